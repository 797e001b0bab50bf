package orangebook

import (
	"strings"

	"github.com/deeyajkotecha-del/helix-biotech-sub002/entities"
)

// Delimiter separates fields in the Orange Book text files
const Delimiter = "~"

// Record maps field names to trimmed values
type Record map[string]string

// ParseFlatFile splits tilde-delimited text into records keyed by fields.
// The first line is a header and is skipped, empty lines are ignored.
// Rows shorter than fields get "" for the missing trailing values and longer
// rows have their extra values dropped: the published files have carried
// ragged rows, so field counts are not validated.
func ParseFlatFile(text string, fields []string) []Record {
	lines := strings.Split(text, "\n")
	if len(lines) <= 1 {
		return []Record{}
	}

	records := make([]Record, 0, len(lines)-1)
	for _, line := range lines[1:] {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}

		values := strings.Split(line, Delimiter)
		record := make(Record, len(fields))
		for i, field := range fields {
			if i < len(values) {
				record[field] = strings.TrimSpace(values[i])
			} else {
				record[field] = ""
			}
		}
		records = append(records, record)
	}

	return records
}

func makeProducts(text string) []entities.OrangeBookProduct {
	records := ParseFlatFile(text, entities.ProductFields)
	products := make([]entities.OrangeBookProduct, 0, len(records))

	for _, r := range records {
		products = append(products, entities.OrangeBookProduct{
			Ingredient:        r["ingredient"],
			DfRoute:           r["dfRoute"],
			TradeName:         r["tradeName"],
			Applicant:         r["applicant"],
			Strength:          r["strength"],
			ApplType:          r["applType"],
			ApplNo:            r["applNo"],
			ProductNo:         r["productNo"],
			TeCode:            r["teCode"],
			ApprovalDate:      r["approvalDate"],
			Rld:               r["rld"],
			Rs:                r["rs"],
			Type:              r["type"],
			ApplicantFullName: r["applicantFullName"],
		})
	}

	return products
}

func makePatents(text string) []entities.OrangeBookPatentRecord {
	records := ParseFlatFile(text, entities.PatentFields)
	patents := make([]entities.OrangeBookPatentRecord, 0, len(records))

	for _, r := range records {
		patents = append(patents, entities.OrangeBookPatentRecord{
			ApplType:          r["applType"],
			ApplNo:            r["applNo"],
			ProductNo:         r["productNo"],
			PatentNo:          r["patentNo"],
			ExpiryDateText:    r["patentExpireDateText"],
			ExpiryDateParsed:  ParseOrangeBookDate(r["patentExpireDateText"]),
			DrugSubstanceFlag: isFlagSet(r["drugSubstanceFlag"]),
			DrugProductFlag:   isFlagSet(r["drugProductFlag"]),
			PatentUseCode:     r["patentUseCode"],
			DelistFlag:        isFlagSet(r["delistFlag"]),
			SubmissionDate:    r["submissionDate"],
		})
	}

	return patents
}

// makeExclusivities leaves ExclusivityType empty; labels are assigned by the
// exclusivity repository when rows are looked up.
func makeExclusivities(text string) []entities.OrangeBookExclusivityRecord {
	records := ParseFlatFile(text, entities.ExclusivityFields)
	exclusivities := make([]entities.OrangeBookExclusivityRecord, 0, len(records))

	for _, r := range records {
		exclusivities = append(exclusivities, entities.OrangeBookExclusivityRecord{
			ApplType:              r["applType"],
			ApplNo:                r["applNo"],
			ProductNo:             r["productNo"],
			ExclusivityCode:       r["exclusivityCode"],
			ExclusivityDateText:   r["exclusivityDate"],
			ExclusivityDateParsed: ParseOrangeBookDate(r["exclusivityDate"]),
		})
	}

	return exclusivities
}

// isFlagSet reads the Orange Book "Y" flag columns
func isFlagSet(value string) bool {
	return strings.EqualFold(value, "Y")
}
