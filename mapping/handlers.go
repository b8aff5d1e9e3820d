package mapping

import (
	"fmt"
	"strings"

	"github.com/bluecloud-project/eoscsync/vocabulary"
)

// canonicalOrganisation is the provider id the synchronized records belong
// to. The catalogue write permissions only cover this organisation, so any
// other value is a data-entry mistake.
const canonicalOrganisation = "blue-cloud"

// canonicalProvider replaces the known-bad resource-provider values.
const canonicalProvider = "d4science"

// legacyProviderURL occurs in several records instead of a provider id.
const legacyProviderURL = "https://data.d4science.org/ctlg/Blue-CloudProject/blue-cloud_virtual_research_environment"

// extraction is the working state of one Map call: the record under
// construction plus the loose id/name lists that only become record fields
// after the extras pass.
type extraction struct {
	vocab *vocabulary.Set
	rec   *TargetRecord
	diags *Diagnostics

	domainNames  []string
	domainIDs    []string
	subdomainIDs []string

	categoryNames  []string
	categoryIDs    []string
	subcategoryIDs []string

	targetUserNames []string

	multimediaURL  string
	multimediaName string
	useCaseURL     string
	useCaseName    string

	mainContactName   string
	publicContactName string
	publicContact     Contact
}

// extraHandler processes one extras value. A returned error aborts the
// mapping (vocabulary lookup misses only); data-quality problems go through
// the diagnostics accumulator instead.
type extraHandler func(x *extraction, val string) error

// extrasHandlers dispatches on the namespaced extras key. Scalar fields
// overwrite on repeated keys (last write wins, as the reference system
// behaves); list fields append. Adding a key is a table change, not a code
// change.
var extrasHandlers = map[string]extraHandler{
	// Basic information
	"BasicInformation:Resource Organisation": handleResourceOrganisation,
	"BasicInformation:Resource Provider":     handleResourceProvider,
	"BasicInformation:Webpage": scalarURL("webpage", true, func(t *TargetRecord, v string) {
		t.Webpage = v
	}),

	// Marketing information
	"MarketingInformation:Tagline": scalarString("tagline", true, 100, func(t *TargetRecord, v string) {
		t.Tagline = v
	}),
	"MarketingInformation:Logo": scalarURL("logo", true, func(t *TargetRecord, v string) {
		t.Logo = v
	}),
	// EOSC allows several multimedia and use-case pairs; the source stores
	// the URL and the name as independent extras, so only one pair can be
	// re-composed safely.
	"MarketingInformation:Multimedia": func(x *extraction, val string) error {
		CheckURL(x.diags, val, "multimedia_url", false)
		x.multimediaURL = val
		return nil
	},
	"MarketingInformation:Multimedia Name": func(x *extraction, val string) error {
		CheckString(x.diags, val, "multimedia_name", false, 100)
		x.multimediaName = val
		return nil
	},
	"MarketingInformation:Use Case": func(x *extraction, val string) error {
		CheckURL(x.diags, val, "use_case_url", false)
		x.useCaseURL = val
		return nil
	},
	"MarketingInformation:Use Case Name": func(x *extraction, val string) error {
		CheckString(x.diags, val, "use_case_name", false, 100)
		x.useCaseName = val
		return nil
	},

	// Classification information. Composite pairs are assembled after the
	// extras pass; here only the loose ids are collected.
	"ClassificationInformation:Scientific Domain":    handleScientificDomain,
	"ClassificationInformation:Scientific Subdomain": handleScientificSubdomain,
	"ClassificationInformation:Category":             handleCategory,
	"ClassificationInformation:Subcategory":          handleSubcategory,
	"ClassificationInformation:Target User":          handleTargetUser,
	"ClassificationInformation:Access Type": listCV("accessTypes",
		func(s *vocabulary.Set) vocabulary.Vocabulary { return s.AccessTypes },
		func(t *TargetRecord, id string) { t.AccessTypes = append(t.AccessTypes, id) }),
	"ClassificationInformation:Access Mode": listCV("accessModes",
		func(s *vocabulary.Set) vocabulary.Vocabulary { return s.AccessModes },
		func(t *TargetRecord, id string) { t.AccessModes = append(t.AccessModes, id) }),

	// Geographical and language availability
	"AvailabilityInformation:Geographical Availability": handleGeographicalAvailability,
	"AvailabilityInformation:Language Availability":     handleLanguageAvailability,

	// Resource location
	"LocationInformation:Resource Geographic Location": handleGeographicLocation,

	// Contact information
	"ContactInformation:Main Contact Name": func(x *extraction, val string) error {
		x.mainContactName = val
		return nil
	},
	"ContactInformation:Main Contact Email": scalarEmail("maincontact_email", true, func(t *TargetRecord, v string) {
		t.MainContact.Email = v
	}),
	"ContactInformation:Main Contact Phone": scalarString("maincontact_phone", false, 20, func(t *TargetRecord, v string) {
		t.MainContact.Phone = v
	}),
	"ContactInformation:Main Contact Position": scalarString("maincontact_position", false, 20, func(t *TargetRecord, v string) {
		t.MainContact.Position = v
	}),
	"ContactInformation:Main Contact Organisation": handleMainContactOrganisation,
	"ContactInformation:Public Contact Name": func(x *extraction, val string) error {
		x.publicContactName = val
		return nil
	},
	"ContactInformation:Public Contact Email": func(x *extraction, val string) error {
		CheckEmail(x.diags, val, "publiccontact_email", true)
		x.publicContact.Email = val
		return nil
	},
	"ContactInformation:Public Contact Phone": func(x *extraction, val string) error {
		CheckString(x.diags, val, "publiccontact_phone", false, 20)
		x.publicContact.Phone = val
		return nil
	},
	"ContactInformation:Public Contact Position": func(x *extraction, val string) error {
		CheckString(x.diags, val, "publiccontact_position", false, 20)
		x.publicContact.Position = val
		return nil
	},
	"ContactInformation:Public Contact Organisation": func(x *extraction, val string) error {
		CheckString(x.diags, val, "publiccontact_organisation", false, 50)
		x.publicContact.Organisation = val
		return nil
	},
	"ContactInformation:Helpdesk Email": scalarEmail("helpdeskEmail", true, func(t *TargetRecord, v string) {
		t.HelpdeskEmail = v
	}),
	"ContactInformation:Security Contact Email": scalarEmail("securityContactEmail", true, func(t *TargetRecord, v string) {
		t.SecurityContactEmail = v
	}),

	// Maturity information
	"MaturityInformation:Technology Readiness Level": handleTRL,
	"MaturityInformation:Life Cycle Status": scalarCV("lifeCycleStatus",
		func(s *vocabulary.Set) vocabulary.Vocabulary { return s.LifeCycleStatus },
		func(t *TargetRecord, id string) { t.LifeCycleStatus = id }),
	"MaturityInformation:Certifications": listString("certifications", 100, func(t *TargetRecord, v string) {
		t.Certifications = append(t.Certifications, v)
	}),
	"MaturityInformation:Standards": listString("standards", 100, func(t *TargetRecord, v string) {
		t.Standards = append(t.Standards, v)
	}),
	"MaturityInformation:Open Source Technologies": listString("openSourceTechnologies", 100, func(t *TargetRecord, v string) {
		t.OpenSourceTechnologies = append(t.OpenSourceTechnologies, v)
	}),
	"MaturityInformation:Last Update": scalarDate("lastUpdate", false, func(t *TargetRecord, v string) {
		t.LastUpdate = v
	}),
	"MaturityInformation:Change Log": listString("change log", 1000, func(t *TargetRecord, v string) {
		t.ChangeLog = append(t.ChangeLog, v)
	}),

	// Dependencies information
	"DependenciesInformation:Required Resources": listString("requiredResources", 0, func(t *TargetRecord, v string) {
		t.RequiredResources = append(t.RequiredResources, v)
	}),
	"DependenciesInformation:Related Resources": listString("relatedResources", 0, func(t *TargetRecord, v string) {
		t.RelatedResources = append(t.RelatedResources, v)
	}),
	"DependenciesInformation:Related Platforms": listString("relatedPlatforms", 0, func(t *TargetRecord, v string) {
		t.RelatedPlatforms = append(t.RelatedPlatforms, v)
	}),

	// Attribution information
	"AttributionInformation:Funding Body": listCV("fundingBody",
		func(s *vocabulary.Set) vocabulary.Vocabulary { return s.FundingBodies },
		func(t *TargetRecord, id string) { t.FundingBody = append(t.FundingBody, id) }),
	"AttributionInformation:Funding Program": listCV("fundingPrograms",
		func(s *vocabulary.Set) vocabulary.Vocabulary { return s.FundingPrograms },
		func(t *TargetRecord, id string) { t.FundingPrograms = append(t.FundingPrograms, id) }),
	"AttributionInformation:Project": listString("grantProject", 100, func(t *TargetRecord, v string) {
		t.GrantProjectNames = append(t.GrantProjectNames, v)
	}),

	// Management information
	"ManagementInformation:Helpdesk Page": scalarURL("helpdeskPage", false, func(t *TargetRecord, v string) {
		t.HelpdeskPage = v
	}),
	"ManagementInformation:User Manual": scalarURL("userManual", false, func(t *TargetRecord, v string) {
		t.UserManual = v
	}),
	"ManagementInformation:Terms Of Use": scalarURL("termsOfUse", true, func(t *TargetRecord, v string) {
		t.TermsOfUse = v
	}),
	"ManagementInformation:Privacy Policy": scalarURL("privacyPolicy", true, func(t *TargetRecord, v string) {
		t.PrivacyPolicy = v
	}),
	"ManagementInformation:Access Policy": scalarURL("accessPolicy", false, func(t *TargetRecord, v string) {
		t.AccessPolicy = v
	}),
	"ManagementInformation:Service Level": handleServiceLevel,
	"ManagementInformation:Resource Level": scalarURL("resourceLevel", false, func(t *TargetRecord, v string) {
		t.ResourceLevel = v
	}),
	"ManagementInformation:Training Information": scalarURL("trainingInformation", false, func(t *TargetRecord, v string) {
		t.TrainingInformation = v
	}),
	"ManagementInformation:Status Monitoring": scalarURL("statusMonitoring", false, func(t *TargetRecord, v string) {
		t.StatusMonitoring = v
	}),
	"ManagementInformation:Maintenance": scalarURL("maintenance", false, func(t *TargetRecord, v string) {
		t.Maintenance = v
	}),

	// Access, order and financial information
	"AccessOrderInformation:Order Type": handleOrderType,
	"AccessOrderInformation:Order": scalarURL("order", false, func(t *TargetRecord, v string) {
		t.Order = v
	}),
	"FinancialInformation:Payment Model": scalarURL("paymentModel", false, func(t *TargetRecord, v string) {
		t.PaymentModel = v
	}),
	"FinancialInformation:Pricing": scalarURL("pricing", false, func(t *TargetRecord, v string) {
		t.Pricing = v
	}),
}

// Declarative handler constructors. Each captures the field name for
// diagnostics, the validation constraint and the assignment, so the table
// above reads as configuration.

func scalarString(field string, mandatory bool, maxLen int, assign func(*TargetRecord, string)) extraHandler {
	return func(x *extraction, val string) error {
		CheckString(x.diags, val, field, mandatory, maxLen)
		assign(x.rec, val)
		return nil
	}
}

func scalarURL(field string, mandatory bool, assign func(*TargetRecord, string)) extraHandler {
	return func(x *extraction, val string) error {
		CheckURL(x.diags, val, field, mandatory)
		assign(x.rec, val)
		return nil
	}
}

func scalarEmail(field string, mandatory bool, assign func(*TargetRecord, string)) extraHandler {
	return func(x *extraction, val string) error {
		CheckEmail(x.diags, val, field, mandatory)
		assign(x.rec, val)
		return nil
	}
}

func scalarDate(field string, mandatory bool, assign func(*TargetRecord, string)) extraHandler {
	return func(x *extraction, val string) error {
		CheckDate(x.diags, val, field, mandatory)
		assign(x.rec, val)
		return nil
	}
}

// listString appends non-empty values. Empty occurrences of optional
// multi-valued extras are common and not worth a diagnostic.
func listString(field string, maxLen int, appendTo func(*TargetRecord, string)) extraHandler {
	return func(x *extraction, val string) error {
		CheckString(x.diags, val, field, false, maxLen)
		if len(val) > 0 {
			appendTo(x.rec, val)
		}
		return nil
	}
}

// scalarCV resolves the value against a controlled vocabulary and assigns
// the id. A lookup miss is fatal for the record (see package doc).
func scalarCV(field string, pick func(*vocabulary.Set) vocabulary.Vocabulary, assign func(*TargetRecord, string)) extraHandler {
	return func(x *extraction, val string) error {
		id, err := pick(x.vocab).Lookup(val)
		if err != nil {
			return fmt.Errorf("%s: %w", field, err)
		}
		assign(x.rec, id)
		return nil
	}
}

// listCV is scalarCV for multi-valued fields.
func listCV(field string, pick func(*vocabulary.Set) vocabulary.Vocabulary, appendTo func(*TargetRecord, string)) extraHandler {
	return func(x *extraction, val string) error {
		id, err := pick(x.vocab).Lookup(val)
		if err != nil {
			return fmt.Errorf("%s: %w", field, err)
		}
		appendTo(x.rec, id)
		return nil
	}
}

// Bespoke handlers for the keys with data-correction rules.

func handleResourceOrganisation(x *extraction, val string) error {
	switch {
	case val == canonicalOrganisation:
		// Already the provider id, nothing to do.
	case val == "Blue-Cloud":
		x.diags.Addf("resourceOrganisation: Corrected field content: %q -> %q", val, canonicalOrganisation)
		val = canonicalOrganisation
	case len(val) == 0:
		x.diags.Addf("resourceOrganisation is an empty string.")
	default:
		x.diags.Addf("resourceOrganisation: Replaced content %q with %q; records can only be onboarded under that organisation.", val, canonicalOrganisation)
		val = canonicalOrganisation
	}
	x.rec.ResourceOrganisation = val
	return nil
}

func handleResourceProvider(x *extraction, val string) error {
	if len(val) == 0 {
		x.diags.Addf("Resource provider is empty; consider defaulting to %q.", canonicalProvider)
	}

	switch val {
	case "D4Science":
		x.diags.Addf("resourceProviders: Corrected field content: %q -> %q", val, canonicalProvider)
		val = canonicalProvider
	case "KNMI":
		x.diags.Addf("resourceProviders: Replaced %q with %q; not onboarded as a provider.", val, canonicalProvider)
		val = canonicalProvider
	case legacyProviderURL:
		x.diags.Addf("resourceProviders: Replaced URL value %q with %q.", val, canonicalProvider)
		val = canonicalProvider
	}

	if len(val) > 0 && !x.vocab.Providers.Contains(val) {
		x.diags.Addf("Provider id %q not in list of onboarded providers; may fail validation.", val)
	}
	x.rec.ResourceProviders = append(x.rec.ResourceProviders, val)
	return nil
}

func handleScientificDomain(x *extraction, val string) error {
	x.domainNames = append(x.domainNames, val)
	id, err := x.vocab.Domains.Parents.Lookup(val)
	if err != nil {
		return err
	}
	x.domainIDs = append(x.domainIDs, id)
	return nil
}

func handleScientificSubdomain(x *extraction, val string) error {
	val = replaceAndWithAmpersand(x.diags, "scientificSubdomain", val)
	id, err := x.vocab.Domains.Children.Lookup(val)
	if err != nil {
		return err
	}
	x.subdomainIDs = append(x.subdomainIDs, id)
	return nil
}

func handleCategory(x *extraction, val string) error {
	x.categoryNames = append(x.categoryNames, val)

	if val == "Application" {
		x.diags.Addf("category: Corrected legacy singular %q -> %q", val, "Applications")
		val = "Applications"
	}
	val = replaceAndWithAmpersand(x.diags, "category", val)

	id, err := x.vocab.Categories.Parents.Lookup(val)
	if err != nil {
		return err
	}
	x.categoryIDs = append(x.categoryIDs, id)
	return nil
}

func handleSubcategory(x *extraction, val string) error {
	if strings.Contains(val, "Application.") {
		x.diags.Addf("subcategory: Corrected legacy singular prefix in %q", val)
		val = strings.ReplaceAll(val, "Application.", "Applications.")
	}
	if strings.Contains(val, "Development Resource.") {
		x.diags.Addf("subcategory: Corrected legacy singular prefix in %q", val)
		val = strings.ReplaceAll(val, "Development Resource.", "Development Resources.")
	}
	val = replaceAndWithAmpersand(x.diags, "subcategory", val)

	id, err := x.vocab.Categories.Children.Lookup(val)
	if err != nil {
		return err
	}
	x.subcategoryIDs = append(x.subcategoryIDs, id)
	return nil
}

func handleTargetUser(x *extraction, val string) error {
	if val == "Researcher groups" {
		x.diags.Addf("targetUsers: Replaced %q with %q", val, "Research Groups")
		val = "Research Groups"
	}
	id, err := x.vocab.TargetUsers.Lookup(val)
	if err != nil {
		return err
	}
	x.targetUserNames = append(x.targetUserNames, val)
	x.rec.TargetUsers = append(x.rec.TargetUsers, id)
	return nil
}

func handleGeographicalAvailability(x *extraction, val string) error {
	_, code := splitDisplayAndCode(val)
	if len(code) == 0 {
		x.diags.Addf("Empty string passed for mandatory Geographical Availability")
		return nil
	}
	x.rec.GeographicalAvailabilities = append(x.rec.GeographicalAvailabilities, code)
	return nil
}

func handleLanguageAvailability(x *extraction, val string) error {
	_, code := splitDisplayAndCode(val)
	if len(code) == 0 {
		x.diags.Addf("Empty string passed for mandatory Language Availability")
		return nil
	}
	x.rec.LanguageAvailabilities = append(x.rec.LanguageAvailabilities, code)
	return nil
}

// handleGeographicLocation tolerates both "Italy (IT)" and a bare display
// name like "Other"; the name is resolved against the country vocabulary and
// kept raw when unknown, never dropped.
func handleGeographicLocation(x *extraction, val string) error {
	name, _ := splitDisplayAndCode(val)
	code, err := x.vocab.Countries.Lookup(name)
	if err != nil {
		x.diags.Addf("Could not map resourceGeographicLocations: %q not in the country vocabulary; keeping the raw value.", name)
		x.rec.ResourceGeographicLocations = append(x.rec.ResourceGeographicLocations, name)
		return nil
	}
	x.rec.ResourceGeographicLocations = append(x.rec.ResourceGeographicLocations, code)
	return nil
}

func handleMainContactOrganisation(x *extraction, val string) error {
	if val == "Centro Euro-Mediterraneo sui Cambiamenti Climatici CMCC" {
		x.diags.Addf("maincontact_organisation: Shortened %q to %q", val, "cmcc")
		val = "cmcc"
	}
	CheckString(x.diags, val, "maincontact_organisation", false, 50)
	x.rec.MainContact.Organisation = val
	return nil
}

// handleTRL extracts the numeric level from values like
// "TRL4 Technology validated in lab" and maps it to the "trl-4" id form.
func handleTRL(x *extraction, val string) error {
	if len(val) == 0 || !strings.HasPrefix(val, "TRL") {
		x.diags.Addf("trl: Cannot parse readiness level from %q", val)
		return nil
	}
	token := strings.SplitN(val, " ", 2)[0]
	x.rec.TRL = strings.Replace(token, "TRL", "trl-", 1)
	return nil
}

func handleServiceLevel(x *extraction, val string) error {
	CheckURL(x.diags, val, "serviceLevel", false)
	x.rec.ServiceLevel = val
	x.diags.Addf("Deprecated Service Level (%q), should now be Resource Level", val)
	return nil
}

// handleOrderType normalizes the ambiguous legacy wording before the
// vocabulary lookup; the target system itself is unsure about the long form.
func handleOrderType(x *extraction, val string) error {
	if val == "Request/Order required" {
		x.diags.Addf("orderType: Normalized %q to %q before lookup", val, "Order required")
		val = "Order required"
	}
	id, err := x.vocab.OrderTypes.Lookup(val)
	if err != nil {
		return err
	}
	x.rec.OrderType = id
	return nil
}

// replaceAndWithAmpersand rewrites " and " to " & " because the vocabulary
// encodes the ampersand form ("Engineering & Technology").
func replaceAndWithAmpersand(d *Diagnostics, field string, val string) string {
	if strings.Contains(val, " and ") {
		d.Addf("%s: Replaced \" and \" with \" & \" in %q for vocabulary lookup", field, val)
		return strings.ReplaceAll(val, " and ", " & ")
	}
	return val
}

// splitDisplayAndCode parses values of the form "Display Name (CODE)". A
// value without a parenthesized code yields the whole string as the name and
// an empty code.
func splitDisplayAndCode(val string) (name, code string) {
	idx := strings.Index(val, " (")
	if idx < 0 {
		return val, ""
	}
	name = val[:idx]
	code = strings.TrimSuffix(val[idx+2:], ")")
	return name, code
}
