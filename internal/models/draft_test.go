package models_test

import (
	"testing"

	"github.com/buildlink/onboarding-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDraft_CloneIsIndependent(t *testing.T) {
	draft := models.NewDraft(models.RoleDeveloper)
	draft.Personal.FullName = "Kwame Mensah"
	draft.Personal.CitiesCovered = []string{"Accra"}
	draft.Identity.Selfie = models.NewAttachment("selfie.jpg", "image/jpeg", []byte("abc"))
	draft.Credentials.Licenses = []models.Attachment{
		models.NewAttachment("lic.pdf", "application/pdf", []byte("def")),
	}
	draft.Projects.Projects[0].Title = "Lakeside Villa"
	draft.Projects.Projects[0].Media = []models.Attachment{
		models.NewAttachment("villa.jpg", "image/jpeg", []byte("ghi")),
	}
	draft.Preferences.PreferredCities = []string{"Accra"}

	clone := draft.Clone()

	// Mutating the original must not show through the clone.
	draft.Personal.FullName = "Ama Boateng"
	draft.Personal.CitiesCovered[0] = "Kumasi"
	draft.Identity.Selfie.Meta.Name = "other.jpg"
	draft.Credentials.Licenses[0].Meta.Name = "other.pdf"
	draft.Projects.Projects[0].Title = "Changed"
	draft.Projects.Projects[0].Media[0].Meta.Name = "other.jpg"
	draft.Preferences.PreferredCities[0] = "Kumasi"

	assert.Equal(t, "Kwame Mensah", clone.Personal.FullName)
	assert.Equal(t, []string{"Accra"}, clone.Personal.CitiesCovered)
	assert.Equal(t, "selfie.jpg", clone.Identity.Selfie.Meta.Name)
	assert.Equal(t, "lic.pdf", clone.Credentials.Licenses[0].Meta.Name)
	assert.Equal(t, "Lakeside Villa", clone.Projects.Projects[0].Title)
	assert.Equal(t, "villa.jpg", clone.Projects.Projects[0].Media[0].Meta.Name)
	assert.Equal(t, []string{"Accra"}, clone.Preferences.PreferredCities)
}

func TestDraft_CloneSharesFilePayloads(t *testing.T) {
	draft := models.NewDraft(models.RoleDeveloper)
	draft.Identity.Selfie = models.NewAttachment("selfie.jpg", "image/jpeg", []byte("abc"))

	clone := draft.Clone()

	// Payloads are write-once; copies point at the same bytes.
	require.True(t, clone.Identity.Selfie.HasPayload())
	assert.Same(t, draft.Identity.Selfie.Handle, clone.Identity.Selfie.Handle)
}

func TestDraft_CloneKeepsAppendsSeparate(t *testing.T) {
	draft := models.NewDraft(models.RoleDeveloper)
	clone := draft.Clone()

	draft.Projects.Add()
	require.Len(t, draft.Projects.Projects, 2)
	assert.Len(t, clone.Projects.Projects, 1)
}
