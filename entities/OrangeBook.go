// Package entities holds the data model shared by the Orange Book store, the
// approval resolver and the LOE engine.
package entities

import "time"

// Flat-file field names, in file order
var (
	ProductFields = []string{
		"ingredient", "dfRoute", "tradeName", "applicant", "strength", "applType",
		"applNo", "productNo", "teCode", "approvalDate", "rld", "rs", "type",
		"applicantFullName",
	}

	PatentFields = []string{
		"applType", "applNo", "productNo", "patentNo", "patentExpireDateText",
		"drugSubstanceFlag", "drugProductFlag", "patentUseCode", "delistFlag",
		"submissionDate",
	}

	ExclusivityFields = []string{
		"applType", "applNo", "productNo", "exclusivityCode", "exclusivityDate",
	}
)

type OrangeBookProduct struct {
	Ingredient        string `json:"ingredient"`
	DfRoute           string `json:"dfRoute"`
	TradeName         string `json:"tradeName"`
	Applicant         string `json:"applicant"`
	Strength          string `json:"strength"`
	ApplType          string `json:"applType"`
	ApplNo            string `json:"applNo"`
	ProductNo         string `json:"productNo"`
	TeCode            string `json:"teCode"`
	ApprovalDate      string `json:"approvalDate"`
	Rld               string `json:"rld"`
	Rs                string `json:"rs"`
	Type              string `json:"type"`
	ApplicantFullName string `json:"applicantFullName"`
}

type OrangeBookPatentRecord struct {
	ApplType          string  `json:"applType"`
	ApplNo            string  `json:"applNo"`
	ProductNo         string  `json:"productNo"`
	PatentNo          string  `json:"patentNo"`
	ExpiryDateText    string  `json:"expiryDateText"`
	ExpiryDateParsed  ISODate `json:"expiryDateParsed"`
	DrugSubstanceFlag bool    `json:"drugSubstanceFlag"`
	DrugProductFlag   bool    `json:"drugProductFlag"`
	PatentUseCode     string  `json:"patentUseCode"`
	DelistFlag        bool    `json:"delistFlag"`
	SubmissionDate    string  `json:"submissionDate"`
}

type OrangeBookExclusivityRecord struct {
	ApplType              string  `json:"applType"`
	ApplNo                string  `json:"applNo"`
	ProductNo             string  `json:"productNo"`
	ExclusivityCode       string  `json:"exclusivityCode"`
	ExclusivityDateText   string  `json:"exclusivityDateText"`
	ExclusivityDateParsed ISODate `json:"exclusivityDateParsed"`
	ExclusivityType       string  `json:"exclusivityType"`
}

// TableSource tells where a generation of tables was read from
type TableSource string

const (
	SourceMemory  TableSource = "memory"
	SourceDisk    TableSource = "disk"
	SourceNetwork TableSource = "network"
)

// OrangeBookTables is one cache generation of the three parsed datasets.
// Tables are never modified after construction.
type OrangeBookTables struct {
	Products      []OrangeBookProduct
	Patents       []OrangeBookPatentRecord
	Exclusivities []OrangeBookExclusivityRecord
	// LoadedAt is when the data left the network: the download time, or the
	// oldest cache file modification time for a disk load
	LoadedAt time.Time
	Source   TableSource
}
