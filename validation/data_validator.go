// Package validation checks user input and reports Orange Book data quality.
package validation

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/deeyajkotecha-del/helix-biotech-sub002/entities"
	"github.com/deeyajkotecha-del/helix-biotech-sub002/exclusivity"
	"github.com/deeyajkotecha-del/helix-biotech-sub002/interfaces"
)

const (
	minInputLength = 2
	maxInputLength = 100
)

// Pre-compiled once at package initialization
var (
	// Drug and condition names: letters in any script, digits, spaces and the
	// punctuation found in brand names and pharmacologic class names,
	// e.g. "GLP-1 Receptor Agonist [EPC]" or "Sjögren’s syndrome"
	inputRegex = regexp.MustCompile(`^[\p{L}\p{M}0-9\s\-\.\+'’,()\[\]]+$`)

	// Optional NDA/ANDA/BLA prefix followed by the Orange Book digits
	applicationNumberRegex = regexp.MustCompile(`^(?i:NDA|ANDA|BLA)?[0-9]{1,7}$`)

	// Substring checks, cheaper than regex for fixed patterns
	dangerousPatterns = []string{
		"<script", "javascript:", "vbscript:", "onload=", "onerror=",
		"eval(", "expression(", "url(",
		"' or ", "union select", "drop table", "delete from", "insert into",
		"--", "/*", "*/", "exec(",
		"; ", "| ", "& ", "`", "$(", "${",
		"../", "..\\", "%2e%2e", "file://",
	}
)

// Compile-time check to ensure DataValidatorImpl implements DataValidator
var _ interfaces.DataValidator = (*DataValidatorImpl)(nil)

// DataValidatorImpl implements the interfaces.DataValidator interface
type DataValidatorImpl struct{}

// NewDataValidator creates a new data validator
func NewDataValidator() *DataValidatorImpl {
	return &DataValidatorImpl{}
}

// ValidateInput validates drug and condition names taken from request paths
func (v *DataValidatorImpl) ValidateInput(input string) error {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return fmt.Errorf("input cannot be empty")
	}

	if len(trimmed) < minInputLength {
		return fmt.Errorf("input too short: minimum %d characters", minInputLength)
	}

	if len(input) > maxInputLength {
		return fmt.Errorf("input too long: maximum %d characters", maxInputLength)
	}

	lowerInput := strings.ToLower(input)
	for _, pattern := range dangerousPatterns {
		if strings.Contains(lowerInput, pattern) {
			return fmt.Errorf("input contains potentially dangerous content")
		}
	}

	if !inputRegex.MatchString(input) {
		return fmt.Errorf("input contains invalid characters. Only letters, numbers, spaces, hyphens, apostrophes, periods, commas, plus signs, parentheses and brackets are allowed")
	}

	if hasExcessiveRepetition(input) {
		return fmt.Errorf("input contains excessive character repetition")
	}

	return nil
}

// ValidateApplicationNumber accepts "211675", "NDA211675", "anda076123" or "BLA125514"
func (v *DataValidatorImpl) ValidateApplicationNumber(input string) error {
	if strings.TrimSpace(input) == "" {
		return fmt.Errorf("application number cannot be empty")
	}
	if !applicationNumberRegex.MatchString(input) {
		return fmt.Errorf("invalid application number %q: expected an optional NDA, ANDA or BLA prefix and up to 7 digits", input)
	}
	return nil
}

// ReportDataQuality counts the issues that parsing tolerates silently:
// duplicate patent rows, free-text dates that did not parse and exclusivity
// codes without a label
func (v *DataValidatorImpl) ReportDataQuality(tables *entities.OrangeBookTables) *entities.DataQualityReport {
	report := &entities.DataQualityReport{
		UnclassifiedCodes: []string{},
	}
	if tables == nil {
		return report
	}

	report.ProductCount = len(tables.Products)
	report.PatentCount = len(tables.Patents)
	report.ExclusivityCount = len(tables.Exclusivities)

	// Check 1: duplicate (application, patent) rows
	seen := make(map[string]bool, len(tables.Patents))
	for _, p := range tables.Patents {
		key := exclusivity.NormalizeApplicationNumber(p.ApplNo) + "/" + p.PatentNo
		if seen[key] {
			report.DuplicatePatentRows++
		}
		seen[key] = true

		// Check 2: non-empty expiry text that did not parse
		if strings.TrimSpace(p.ExpiryDateText) != "" && p.ExpiryDateParsed.IsZero() {
			report.UnparsablePatentDates++
		}
	}

	unclassified := make(map[string]bool)
	for _, e := range tables.Exclusivities {
		// Check 3: non-empty exclusivity date that did not parse
		if strings.TrimSpace(e.ExclusivityDateText) != "" && e.ExclusivityDateParsed.IsZero() {
			report.UnparsableExclusivityDates++
		}

		// Check 4: codes that fall through to the raw value
		code := strings.TrimSpace(e.ExclusivityCode)
		if code != "" && !exclusivity.IsClassified(code) {
			unclassified[code] = true
		}
	}

	for code := range unclassified {
		report.UnclassifiedCodes = append(report.UnclassifiedCodes, code)
	}
	sort.Strings(report.UnclassifiedCodes)

	return report
}

// hasExcessiveRepetition checks for the same character repeated more than 10 times
func hasExcessiveRepetition(input string) bool {
	run := 1
	for i := 1; i < len(input); i++ {
		if input[i] == input[i-1] {
			run++
			if run > 10 {
				return true
			}
		} else {
			run = 1
		}
	}
	return false
}
