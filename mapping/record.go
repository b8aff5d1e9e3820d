package mapping

// SourceRecord is one Blue-Cloud catalogue entry as returned by the
// D4Science catalogue API. Extras may repeat a key; repeated keys represent
// multi-valued fields.
type SourceRecord struct {
	ID      string  `json:"id"`
	Title   string  `json:"title"`
	Name    string  `json:"name"`
	Version string  `json:"version"`
	Notes   string  `json:"notes"`
	Tags    []Tag   `json:"tags"`
	Extras  []Extra `json:"extras"`
}

// Tag is one entry of a source record's tag list.
type Tag struct {
	DisplayName string `json:"display_name"`
}

// Extra is one namespaced key/value entry, e.g.
// key "ClassificationInformation:Scientific Domain", value "Natural Sciences".
type Extra struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Multimedia is one multimedia URL/name pair on the EOSC profile.
type Multimedia struct {
	MultimediaURL  string `json:"multimediaURL"`
	MultimediaName string `json:"multimediaName"`
}

// UseCase is one use-case URL/name pair on the EOSC profile.
type UseCase struct {
	UseCaseURL  string `json:"useCaseURL"`
	UseCaseName string `json:"useCaseName"`
}

// DomainPair composes a scientific domain id with one of its subdomain ids.
type DomainPair struct {
	ScientificDomain    string `json:"scientificDomain"`
	ScientificSubdomain string `json:"scientificSubdomain"`
}

// CategoryPair composes a category id with one of its subcategory ids.
type CategoryPair struct {
	Category    string `json:"category"`
	Subcategory string `json:"subcategory"`
}

// Contact is a structured EOSC contact.
type Contact struct {
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	Position     string `json:"position"`
	Organisation string `json:"organisation"`
}

// TargetRecord is the EOSC resource profile produced by the Mapper. JSON
// field names match the EOSC providers API exactly. ID is empty until the
// orchestration resolves it from the id store; SourceID keeps the Blue-Cloud
// id for the round trip.
type TargetRecord struct {
	ID       string `json:"id,omitempty"`
	SourceID string `json:"blue_id"`

	// Basic information
	Abbreviation         string   `json:"abbreviation"`
	Name                 string   `json:"name"`
	ResourceOrganisation string   `json:"resourceOrganisation"`
	ResourceProviders    []string `json:"resourceProviders"`
	Webpage              string   `json:"webpage"`

	// Marketing information
	Description string       `json:"description"`
	Tagline     string       `json:"tagline"`
	Logo        string       `json:"logo"`
	Multimedia  []Multimedia `json:"multimedia"`
	UseCases    []UseCase    `json:"useCases"`

	// Classification information
	ScientificDomains []DomainPair   `json:"scientificDomains"`
	Categories        []CategoryPair `json:"categories"`
	TargetUsers       []string       `json:"targetUsers"`
	AccessTypes       []string       `json:"accessTypes"`
	AccessModes       []string       `json:"accessModes"`
	Tags              []string       `json:"tags"`

	// Geographical and language availability
	GeographicalAvailabilities  []string `json:"geographicalAvailabilities"`
	LanguageAvailabilities      []string `json:"languageAvailabilities"`
	ResourceGeographicLocations []string `json:"resourceGeographicLocations"`

	// Contact information
	MainContact          Contact   `json:"mainContact"`
	PublicContacts       []Contact `json:"publicContacts"`
	HelpdeskEmail        string    `json:"helpdeskEmail"`
	SecurityContactEmail string    `json:"securityContactEmail"`

	// Maturity information
	TRL                    string   `json:"trl"`
	LifeCycleStatus        string   `json:"lifeCycleStatus"`
	Certifications         []string `json:"certifications"`
	Standards              []string `json:"standards"`
	OpenSourceTechnologies []string `json:"openSourceTechnologies"`
	Version                string   `json:"version"`
	LastUpdate             string   `json:"lastUpdate"`
	ChangeLog              []string `json:"changeLog"`

	// Dependencies information
	RequiredResources []string `json:"requiredResources"`
	RelatedResources  []string `json:"relatedResources"`
	RelatedPlatforms  []string `json:"relatedPlatforms"`
	Catalogue         string   `json:"catalogue,omitempty"`

	// Attribution information
	FundingBody       []string `json:"fundingBody"`
	FundingPrograms   []string `json:"fundingPrograms"`
	GrantProjectNames []string `json:"grantProjectNames"`

	// Management information
	HelpdeskPage        string `json:"helpdeskPage"`
	UserManual          string `json:"userManual"`
	TermsOfUse          string `json:"termsOfUse"`
	PrivacyPolicy       string `json:"privacyPolicy"`
	AccessPolicy        string `json:"accessPolicy"`
	ServiceLevel        string `json:"serviceLevel"`
	ResourceLevel       string `json:"resourceLevel,omitempty"`
	TrainingInformation string `json:"trainingInformation"`
	StatusMonitoring    string `json:"statusMonitoring"`
	Maintenance         string `json:"maintenance"`

	// Access, order and financial information
	OrderType    string `json:"orderType"`
	Order        string `json:"order"`
	PaymentModel string `json:"paymentModel"`
	Pricing      string `json:"pricing"`
}

// newTargetRecord returns a record with every list field initialised, so the
// complete schema is defined up front and serialises as [] rather than null
// regardless of which extras are present.
func newTargetRecord() *TargetRecord {
	return &TargetRecord{
		ResourceProviders:           []string{},
		Multimedia:                  []Multimedia{},
		UseCases:                    []UseCase{},
		ScientificDomains:           []DomainPair{},
		Categories:                  []CategoryPair{},
		TargetUsers:                 []string{},
		AccessTypes:                 []string{},
		AccessModes:                 []string{},
		Tags:                        []string{},
		GeographicalAvailabilities:  []string{},
		LanguageAvailabilities:      []string{},
		ResourceGeographicLocations: []string{},
		PublicContacts:              []Contact{},
		Certifications:              []string{},
		Standards:                   []string{},
		OpenSourceTechnologies:      []string{},
		ChangeLog:                   []string{},
		RequiredResources:           []string{},
		RelatedResources:            []string{},
		RelatedPlatforms:            []string{},
		FundingBody:                 []string{},
		FundingPrograms:             []string{},
		GrantProjectNames:           []string{},
	}
}

// Result is the outcome of mapping one source record.
type Result struct {
	// Record is the mapped EOSC profile. It is always populated, even when
	// diagnostics or missing mandatory fields were collected; the caller
	// decides whether an imperfect record is still worth submitting.
	Record *TargetRecord

	// Diagnostics are advisory, human-readable data-quality messages in the
	// order they were collected.
	Diagnostics []string

	// MissingMandatory lists the mandatory EOSC fields that ended up empty,
	// in check order.
	MissingMandatory []string
}
