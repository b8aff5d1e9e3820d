package mapping

import (
	"errors"
	"strings"
	"testing"

	"github.com/bluecloud-project/eoscsync/vocabulary"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustVocab(t *testing.T) *vocabulary.Set {
	t.Helper()
	set, err := vocabulary.Load()
	require.NoError(t, err)
	return set
}

// oceanRecord is a complete, well-formed source record that maps without
// missing mandatory fields.
func oceanRecord() SourceRecord {
	return SourceRecord{
		ID:      "4f1c9a6e",
		Title:   "Ocean Patterns",
		Name:    "oceanpatterns",
		Version: "1.0",
		Notes:   "Detects recurring patterns in ocean observation data.",
		Tags: []Tag{
			{DisplayName: "ocean"},
			{DisplayName: "Researchers"},
			{DisplayName: "Access Mode: free"},
		},
		Extras: []Extra{
			{Key: "BasicInformation:Resource Organisation", Value: "blue-cloud"},
			{Key: "BasicInformation:Resource Provider", Value: "d4science"},
			{Key: "BasicInformation:Webpage", Value: "https://blue-cloud.d4science.org/oceanpatterns"},
			{Key: "MarketingInformation:Tagline", Value: "Recognize patterns in the ocean"},
			{Key: "MarketingInformation:Logo", Value: "https://blue-cloud.d4science.org/logo.png"},
			{Key: "ClassificationInformation:Scientific Domain", Value: "Natural Sciences"},
			{Key: "ClassificationInformation:Scientific Subdomain", Value: "Natural Sciences.Other Natural Sciences"},
			{Key: "ClassificationInformation:Target User", Value: "Researchers"},
			{Key: "ClassificationInformation:Access Mode", Value: "Free"},
			{Key: "AvailabilityInformation:Geographical Availability", Value: "Europe (EO)"},
			{Key: "AvailabilityInformation:Language Availability", Value: "English (en)"},
			{Key: "LocationInformation:Resource Geographic Location", Value: "Italy (IT)"},
			{Key: "ContactInformation:Main Contact Name", Value: "Buurman, Merret"},
			{Key: "ContactInformation:Main Contact Email", Value: "merret@example.org"},
			{Key: "MaturityInformation:Technology Readiness Level", Value: "TRL8 System complete and qualified"},
			{Key: "AccessOrderInformation:Order Type", Value: "Fully Open Access"},
		},
	}
}

func TestMapCompleteRecord(t *testing.T) {
	m := NewMapper(mustVocab(t))

	res, err := m.Map(oceanRecord())
	require.NoError(t, err)
	rec := res.Record

	assert.Equal(t, "4f1c9a6e", rec.SourceID)
	assert.Equal(t, "Ocean Patterns", rec.Name)
	assert.Equal(t, "oceanpatterns", rec.Abbreviation)
	assert.Equal(t, "blue-cloud", rec.ResourceOrganisation)
	assert.Equal(t, []string{"d4science"}, rec.ResourceProviders)

	assert.Equal(t, []DomainPair{{
		ScientificDomain:    "scientific_domain-natural_sciences",
		ScientificSubdomain: "scientific_subdomain-natural_sciences-other_natural_sciences",
	}}, rec.ScientificDomains)

	assert.Equal(t, []string{"target_user-researchers"}, rec.TargetUsers)
	assert.Equal(t, []string{"access_mode-free"}, rec.AccessModes)
	assert.Equal(t, []string{"EO"}, rec.GeographicalAvailabilities)
	assert.Equal(t, []string{"en"}, rec.LanguageAvailabilities)
	assert.Equal(t, []string{"IT"}, rec.ResourceGeographicLocations)

	assert.Equal(t, "Merret", rec.MainContact.FirstName)
	assert.Equal(t, "Buurman", rec.MainContact.LastName)
	assert.Equal(t, "merret@example.org", rec.MainContact.Email)
	require.Len(t, rec.PublicContacts, 1)

	assert.Equal(t, "trl-8", rec.TRL)
	assert.Equal(t, "order_type-fully_open_access", rec.OrderType)

	// Structured duplicates filtered out of the tag list.
	assert.Equal(t, []string{"ocean"}, rec.Tags)

	assert.Empty(t, res.MissingMandatory)
}

func TestMapOrganisationCorrections(t *testing.T) {
	m := NewMapper(mustVocab(t))

	t.Run("display name normalized", func(t *testing.T) {
		rec := oceanRecord()
		rec.Extras[0].Value = "Blue-Cloud"
		res, err := m.Map(rec)
		require.NoError(t, err)
		assert.Equal(t, "blue-cloud", res.Record.ResourceOrganisation)
		assert.NotEmpty(t, res.Diagnostics)
	})

	t.Run("foreign organisation overwritten", func(t *testing.T) {
		rec := oceanRecord()
		rec.Extras[0].Value = "Some Other Org"
		res, err := m.Map(rec)
		require.NoError(t, err)
		assert.Equal(t, "blue-cloud", res.Record.ResourceOrganisation)

		var noted bool
		for _, msg := range res.Diagnostics {
			if strings.Contains(msg, "Some Other Org") {
				noted = true
			}
		}
		assert.True(t, noted, "expected a diagnostic naming the replaced organisation")
	})
}

func TestMapProviderCorrections(t *testing.T) {
	m := NewMapper(mustVocab(t))

	for _, bad := range []string{"D4Science", "KNMI", legacyProviderURL} {
		rec := oceanRecord()
		rec.Extras[1].Value = bad
		res, err := m.Map(rec)
		require.NoError(t, err)
		assert.Equal(t, []string{"d4science"}, res.Record.ResourceProviders, "input %q", bad)
	}
}

func TestMapAvailabilityWithoutCode(t *testing.T) {
	m := NewMapper(mustVocab(t))

	t.Run("geographical", func(t *testing.T) {
		rec := oceanRecord()
		rec.Extras[9].Value = "Worldwide"
		res, err := m.Map(rec)
		require.NoError(t, err)

		assert.Empty(t, res.Record.GeographicalAvailabilities)
		assert.Contains(t, res.Diagnostics,
			"Empty string passed for mandatory Geographical Availability")
	})

	t.Run("language", func(t *testing.T) {
		rec := oceanRecord()
		rec.Extras[10].Value = "English"
		res, err := m.Map(rec)
		require.NoError(t, err)

		assert.Empty(t, res.Record.LanguageAvailabilities)
		assert.Contains(t, res.Diagnostics,
			"Empty string passed for mandatory Language Availability")
	})
}

func TestMapUnknownCountryKeptRaw(t *testing.T) {
	m := NewMapper(mustVocab(t))

	rec := oceanRecord()
	rec.Extras[11].Value = "Atlantis"
	res, err := m.Map(rec)
	require.NoError(t, err)

	assert.Equal(t, []string{"Atlantis"}, res.Record.ResourceGeographicLocations)

	var noted bool
	for _, msg := range res.Diagnostics {
		if strings.Contains(msg, "Atlantis") {
			noted = true
		}
	}
	assert.True(t, noted, "expected a diagnostic naming the unknown country")
}

func TestMapMissingMandatoryOrder(t *testing.T) {
	m := NewMapper(mustVocab(t))

	rec := oceanRecord()
	extras := rec.Extras[:0]
	for _, e := range rec.Extras {
		if e.Key == "MarketingInformation:Tagline" || e.Key == "MarketingInformation:Logo" {
			continue
		}
		extras = append(extras, e)
	}
	rec.Extras = extras

	res, err := m.Map(rec)
	require.NoError(t, err)
	assert.Equal(t, []string{"tagline", "logo"}, res.MissingMandatory)
}

func TestMapDescriptionTruncation(t *testing.T) {
	m := NewMapper(mustVocab(t))

	rec := oceanRecord()
	rec.Notes = strings.Repeat("ä", 1200)
	res, err := m.Map(rec)
	require.NoError(t, err)

	desc := res.Record.Description
	assert.Equal(t, 1000, len([]rune(desc)))
	assert.True(t, strings.HasSuffix(desc, "(For more details, please visit the service webpage!)"))
}

func TestMapDescriptionKeptWhenShort(t *testing.T) {
	m := NewMapper(mustVocab(t))

	rec := oceanRecord()
	res, err := m.Map(rec)
	require.NoError(t, err)
	assert.Equal(t, rec.Notes, res.Record.Description)
}

func TestMapVocabularyMissIsFatal(t *testing.T) {
	m := NewMapper(mustVocab(t))

	rec := oceanRecord()
	rec.Extras = append(rec.Extras, Extra{
		Key:   "ClassificationInformation:Access Mode",
		Value: "gratis",
	})

	_, err := m.Map(rec)
	require.Error(t, err)
	assert.True(t, errors.Is(err, vocabulary.ErrNotFound))
}

func TestMapSentinelValueRejected(t *testing.T) {
	m := NewMapper(mustVocab(t))

	rec := oceanRecord()
	rec.Extras = append(rec.Extras, Extra{
		Key:   "MarketingInformation:Multimedia",
		Value: "www.mymedia.org",
	})

	_, err := m.Map(rec)
	require.Error(t, err)

	var sentinel *SentinelDataError
	require.ErrorAs(t, err, &sentinel)
	assert.Equal(t, "www.mymedia.org", sentinel.Value)
}

func TestMapCorrectionTable(t *testing.T) {
	m := NewMapper(mustVocab(t))

	tests := []struct {
		name  string
		extra Extra
		check func(t *testing.T, rec *TargetRecord)
	}{
		{
			name:  "researcher groups renamed",
			extra: Extra{Key: "ClassificationInformation:Target User", Value: "Researcher groups"},
			check: func(t *testing.T, rec *TargetRecord) {
				assert.Contains(t, rec.TargetUsers, "target_user-research_groups")
			},
		},
		{
			name:  "order required long form",
			extra: Extra{Key: "AccessOrderInformation:Order Type", Value: "Request/Order required"},
			check: func(t *testing.T, rec *TargetRecord) {
				assert.Equal(t, "order_type-order_required", rec.OrderType)
			},
		},
		{
			name:  "cmcc organisation shortened",
			extra: Extra{Key: "ContactInformation:Main Contact Organisation", Value: "Centro Euro-Mediterraneo sui Cambiamenti Climatici CMCC"},
			check: func(t *testing.T, rec *TargetRecord) {
				assert.Equal(t, "cmcc", rec.MainContact.Organisation)
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := oceanRecord()
			rec.Extras = append(rec.Extras, tc.extra)
			res, err := m.Map(rec)
			require.NoError(t, err)
			tc.check(t, res.Record)
		})
	}
}

func TestMapMultimediaPairAssembled(t *testing.T) {
	m := NewMapper(mustVocab(t))

	rec := oceanRecord()
	rec.Extras = append(rec.Extras,
		Extra{Key: "MarketingInformation:Multimedia", Value: "https://youtu.be/abc"},
		Extra{Key: "MarketingInformation:Multimedia Name", Value: "Intro video"},
	)

	res, err := m.Map(rec)
	require.NoError(t, err)
	assert.Equal(t, []Multimedia{{
		MultimediaURL:  "https://youtu.be/abc",
		MultimediaName: "Intro video",
	}}, res.Record.Multimedia)
}

func TestMapUnknownExtraIgnored(t *testing.T) {
	m := NewMapper(mustVocab(t))

	rec := oceanRecord()
	rec.Extras = append(rec.Extras, Extra{Key: "system:type", Value: "Service"})

	res, err := m.Map(rec)
	require.NoError(t, err)
	assert.NotNil(t, res.Record)
}

func TestMapUnknownAbbreviation(t *testing.T) {
	m := NewMapper(mustVocab(t))

	rec := oceanRecord()
	rec.Name = "never_registered"
	res, err := m.Map(rec)
	require.NoError(t, err)
	assert.Empty(t, res.Record.Abbreviation)
	assert.Contains(t, res.MissingMandatory, "abbreviation")
}

func TestMapServiceLevelDeprecationNotice(t *testing.T) {
	m := NewMapper(mustVocab(t))

	rec := oceanRecord()
	rec.Extras = append(rec.Extras, Extra{
		Key:   "ManagementInformation:Service Level",
		Value: "https://blue-cloud.org/sla",
	})

	res, err := m.Map(rec)
	require.NoError(t, err)
	assert.Equal(t, "https://blue-cloud.org/sla", res.Record.ServiceLevel)

	var noted bool
	for _, msg := range res.Diagnostics {
		if strings.Contains(msg, "Deprecated") {
			noted = true
		}
	}
	assert.True(t, noted)
}
