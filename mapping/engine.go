package mapping

import (
	"strings"

	"github.com/bluecloud-project/eoscsync/vocabulary"
)

// descriptionMaxLen is the hard limit the target catalogue enforces on the
// description field, in characters.
const descriptionMaxLen = 1000

// descriptionSuffix closes a truncated description. The truncation point is
// chosen so that suffix plus kept text land exactly on the limit.
const descriptionSuffix = " ... (For more details, please visit the service webpage!)"

// Mapper turns source catalogue records into target resource profiles using
// a fixed vocabulary set. It is safe for concurrent use; all state lives in
// the per-call extraction.
type Mapper struct {
	vocab *vocabulary.Set
}

func NewMapper(vocab *vocabulary.Set) *Mapper {
	return &Mapper{vocab: vocab}
}

// Map builds the target record for one source record.
//
// Data-quality problems (length overruns, malformed names, missing optional
// content) are accumulated as diagnostics on the Result and never abort the
// mapping. An error is returned only when the record cannot be represented
// at all: a controlled-vocabulary lookup missed, or a known placeholder
// value shows the record was never filled in.
func (m *Mapper) Map(rec SourceRecord) (*Result, error) {
	if err := checkSentinels(rec); err != nil {
		return nil, err
	}

	d := &Diagnostics{}
	t := newTargetRecord()
	t.SourceID = rec.ID

	t.Name = rec.Title
	CheckString(d, t.Name, "name", true, 80)

	abbrev, ok := m.vocab.Abbreviations[rec.Name]
	if !ok {
		d.Addf("No abbreviation registered for service %q", rec.Name)
	}
	t.Abbreviation = abbrev
	CheckString(d, t.Abbreviation, "abbreviation", true, 20)

	t.Version = rec.Version
	CheckString(d, t.Version, "version", false, 10)

	t.Description = TruncateDescription(rec.Notes)

	tags := make([]string, 0, len(rec.Tags))
	for _, tag := range rec.Tags {
		CheckString(d, tag.DisplayName, "tags", false, 50)
		tags = append(tags, tag.DisplayName)
	}

	x := &extraction{vocab: m.vocab, rec: t, diags: d}
	for _, extra := range rec.Extras {
		h, ok := extrasHandlers[extra.Key]
		if !ok {
			continue
		}
		if err := h(x, strings.TrimSpace(extra.Value)); err != nil {
			return nil, err
		}
	}

	m.assembleComposites(x)
	m.assembleContacts(x)

	t.Tags = FilterTags(tags, x.targetUserNames, x.categoryNames, x.domainNames)

	return &Result{
		Record:           t,
		Diagnostics:      d.Messages(),
		MissingMandatory: missingMandatory(t),
	}, nil
}

// assembleComposites pairs the loose classification ids collected during
// the extras pass and folds the single multimedia / use-case URL+name
// couples into their list fields.
func (m *Mapper) assembleComposites(x *extraction) {
	t := x.rec

	for _, p := range MatchPairs(x.diags, x.domainIDs, x.subdomainIDs,
		m.vocab.Domains.ParentOf, "scientificDomain", "scientificSubdomain") {
		t.ScientificDomains = append(t.ScientificDomains, DomainPair{
			ScientificDomain:    p.Parent,
			ScientificSubdomain: p.Child,
		})
	}

	for _, p := range MatchPairs(x.diags, x.categoryIDs, x.subcategoryIDs,
		m.vocab.Categories.ParentOf, "category", "subcategory") {
		t.Categories = append(t.Categories, CategoryPair{
			Category:    p.Parent,
			Subcategory: p.Child,
		})
	}

	if len(x.multimediaURL) > 0 || len(x.multimediaName) > 0 {
		t.Multimedia = append(t.Multimedia, Multimedia{
			MultimediaURL:  x.multimediaURL,
			MultimediaName: x.multimediaName,
		})
	}
	if len(x.useCaseURL) > 0 || len(x.useCaseName) > 0 {
		t.UseCases = append(t.UseCases, UseCase{
			UseCaseURL:  x.useCaseURL,
			UseCaseName: x.useCaseName,
		})
	}
}

// assembleContacts splits the free-text contact names collected during the
// extras pass. The target profile carries exactly one public contact.
func (m *Mapper) assembleContacts(x *extraction) {
	t := x.rec

	first, last := SplitName(x.diags, x.mainContactName, "maincontact_name")
	t.MainContact.FirstName = first
	t.MainContact.LastName = last
	CheckString(x.diags, first, "maincontact_firstname", true, 20)
	CheckString(x.diags, last, "maincontact_lastname", true, 20)

	pc := x.publicContact
	pc.FirstName, pc.LastName = SplitName(x.diags, x.publicContactName, "publiccontact_name")
	CheckString(x.diags, pc.FirstName, "publiccontact_firstname", false, 20)
	CheckString(x.diags, pc.LastName, "publiccontact_lastname", false, 20)
	t.PublicContacts = append(t.PublicContacts, pc)
}

// checkSentinels rejects records still carrying known placeholder values
// left over from catalogue templates.
func checkSentinels(rec SourceRecord) error {
	for _, extra := range rec.Extras {
		val := strings.TrimSpace(extra.Value)
		if sentinelValues[val] {
			return &SentinelDataError{Key: extra.Key, Value: val}
		}
	}
	return nil
}

// TruncateDescription cuts overlong descriptions to exactly
// descriptionMaxLen characters including the pointer to the webpage.
// Counting is by runes, matching how the target validates lengths.
func TruncateDescription(notes string) string {
	runes := []rune(notes)
	if len(runes) <= descriptionMaxLen {
		return notes
	}
	keep := descriptionMaxLen - len([]rune(descriptionSuffix))
	return string(runes[:keep]) + descriptionSuffix
}

// missingMandatory lists the mandatory profile fields that ended up empty,
// in a fixed report order. Pair fields are checked per element so a partial
// pair is still flagged.
func missingMandatory(t *TargetRecord) []string {
	missing := []string{}
	add := func(field, val string) {
		if len(val) == 0 {
			missing = append(missing, field)
		}
	}

	add("abbreviation", t.Abbreviation)
	add("name", t.Name)
	add("resourceOrganisation", t.ResourceOrganisation)
	add("webpage", t.Webpage)
	add("description", t.Description)
	add("tagline", t.Tagline)
	add("logo", t.Logo)

	for _, p := range t.ScientificDomains {
		add("scientificDomain", p.ScientificDomain)
		add("scientificSubdomain", p.ScientificSubdomain)
	}
	for _, p := range t.Categories {
		add("category", p.Category)
		add("subcategory", p.Subcategory)
	}
	if len(t.TargetUsers) == 0 {
		missing = append(missing, "targetUsers")
	}
	for _, v := range t.GeographicalAvailabilities {
		add("geographicalAvailabilities", v)
	}
	for _, v := range t.LanguageAvailabilities {
		add("languageAvailabilities", v)
	}
	return missing
}
