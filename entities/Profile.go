package entities

import "time"

// Application types used by the approval registry
const (
	ApplicationNDA  = "NDA"
	ApplicationANDA = "ANDA"
	ApplicationBLA  = "BLA"
)

type ApprovalRecord struct {
	ApplicationNumber string   `json:"applicationNumber"`
	ApplicationType   string   `json:"applicationType"`
	BrandName         string   `json:"brandName"`
	GenericName       string   `json:"genericName"`
	Sponsor           string   `json:"sponsor"`
	ApprovalDate      ISODate  `json:"approvalDate"`
	ActiveIngredients []string `json:"activeIngredients"`
	DosageForm        string   `json:"dosageForm"`
	Route             string   `json:"route"`
	IsBiologic        bool     `json:"isBiologic"`
}

// LOEResult is the output of the LOE calculation
type LOEResult struct {
	EffectiveLOE              ISODate `json:"effectiveLOE"`
	LatestPatentExpiry        ISODate `json:"latestPatentExpiry"`
	LatestExclusivityExpiry   ISODate `json:"latestExclusivityExpiry"`
	BiologicExclusivityExpiry ISODate `json:"biologicExclusivityExpiry"`
	DaysUntilLOE              *int    `json:"daysUntilLOE"`
}

// DrugPatentProfile is the answer for a single drug. It is built fresh per
// request and not modified afterwards.
type DrugPatentProfile struct {
	DrugName                  string                        `json:"drugName"`
	BrandName                 string                        `json:"brandName"`
	Sponsor                   string                        `json:"sponsor"`
	Approval                  ApprovalRecord                `json:"approval"`
	Patents                   []OrangeBookPatentRecord      `json:"patents"`
	Exclusivities             []OrangeBookExclusivityRecord `json:"exclusivities"`
	UniquePatentNumbers       []string                      `json:"uniquePatentNumbers"`
	EarliestPatentExpiry      ISODate                       `json:"earliestPatentExpiry"`
	LatestPatentExpiry        ISODate                       `json:"latestPatentExpiry"`
	LatestExclusivityExpiry   ISODate                       `json:"latestExclusivityExpiry"`
	BiologicExclusivityExpiry ISODate                       `json:"biologicExclusivityExpiry"`
	EffectiveLOE              ISODate                       `json:"effectiveLOE"`
	DaysUntilLOE              *int                          `json:"daysUntilLOE"`
	FetchedAt                 time.Time                     `json:"fetchedAt"`
}

// DataQualityReport summarises data issues found in one table generation
type DataQualityReport struct {
	ProductCount               int      `json:"productCount"`
	PatentCount                int      `json:"patentCount"`
	ExclusivityCount           int      `json:"exclusivityCount"`
	DuplicatePatentRows        int      `json:"duplicatePatentRows"`
	UnparsablePatentDates      int      `json:"unparsablePatentDates"`
	UnparsableExclusivityDates int      `json:"unparsableExclusivityDates"`
	UnclassifiedCodes          []string `json:"unclassifiedCodes"`
}
