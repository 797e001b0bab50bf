// Package exclusivity answers patent and exclusivity questions for a single
// application from the Orange Book tables.
package exclusivity

import (
	"context"
	"sort"
	"strings"

	"github.com/deeyajkotecha-del/helix-biotech-sub002/entities"
	"github.com/deeyajkotecha-del/helix-biotech-sub002/interfaces"
)

// Compile-time check to ensure Repository implements ExclusivityRepository
var _ interfaces.ExclusivityRepository = (*Repository)(nil)

// Repository reads rows from an Orange Book store
type Repository struct {
	store interfaces.OrangeBookStore
}

// NewRepository creates a repository over store
func NewRepository(store interfaces.OrangeBookStore) *Repository {
	return &Repository{store: store}
}

// NormalizeApplicationNumber strips an NDA, ANDA or BLA prefix and spaces,
// leaving the digits the Orange Book uses.
func NormalizeApplicationNumber(applicationNumber string) string {
	value := strings.ToUpper(strings.TrimSpace(applicationNumber))
	for _, prefix := range []string{entities.ApplicationANDA, entities.ApplicationNDA, entities.ApplicationBLA} {
		if strings.HasPrefix(value, prefix) {
			value = strings.TrimSpace(strings.TrimPrefix(value, prefix))
			break
		}
	}
	return value
}

// matchKey makes "021234" and "21234" compare equal
func matchKey(applicationNumber string) string {
	key := strings.TrimLeft(NormalizeApplicationNumber(applicationNumber), "0")
	if key == "" {
		return "0"
	}
	return key
}

// Patents returns one record per patent number, first row in file order
// winning, sorted by expiry with the latest first and unknown dates last.
func (r *Repository) Patents(ctx context.Context, applicationNumber string) ([]entities.OrangeBookPatentRecord, error) {
	tables, err := r.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	return patentsFor(tables, applicationNumber), nil
}

// Exclusivities returns labelled exclusivity rows sorted like Patents
func (r *Repository) Exclusivities(ctx context.Context, applicationNumber string) ([]entities.OrangeBookExclusivityRecord, error) {
	tables, err := r.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	return exclusivitiesFor(tables, applicationNumber), nil
}

// Lookup returns patents and exclusivities from a single table generation
func (r *Repository) Lookup(ctx context.Context, applicationNumber string) ([]entities.OrangeBookPatentRecord, []entities.OrangeBookExclusivityRecord, error) {
	tables, err := r.store.Load(ctx)
	if err != nil {
		return nil, nil, err
	}
	return patentsFor(tables, applicationNumber), exclusivitiesFor(tables, applicationNumber), nil
}

// SearchProducts returns unique trade names, in file order, of products whose
// ingredient, trade name or dosage form/route contains keyword
func (r *Repository) SearchProducts(ctx context.Context, keyword string) ([]string, error) {
	needle := strings.ToLower(strings.TrimSpace(keyword))
	if needle == "" {
		return nil, nil
	}

	tables, err := r.store.Load(ctx)
	if err != nil {
		return nil, err
	}

	var names []string
	seen := make(map[string]bool)
	for _, product := range tables.Products {
		if product.TradeName == "" {
			continue
		}
		if !strings.Contains(strings.ToLower(product.Ingredient), needle) &&
			!strings.Contains(strings.ToLower(product.TradeName), needle) &&
			!strings.Contains(strings.ToLower(product.DfRoute), needle) {
			continue
		}

		key := strings.ToUpper(product.TradeName)
		if seen[key] {
			continue
		}
		seen[key] = true
		names = append(names, product.TradeName)
	}

	return names, nil
}

func patentsFor(tables *entities.OrangeBookTables, applicationNumber string) []entities.OrangeBookPatentRecord {
	patents := []entities.OrangeBookPatentRecord{}
	if NormalizeApplicationNumber(applicationNumber) == "" {
		return patents
	}
	key := matchKey(applicationNumber)
	seen := make(map[string]bool)

	for _, patent := range tables.Patents {
		if matchKey(patent.ApplNo) != key || seen[patent.PatentNo] {
			continue
		}
		seen[patent.PatentNo] = true
		patents = append(patents, patent)
	}

	sort.SliceStable(patents, func(i, j int) bool {
		return patents[i].ExpiryDateParsed.After(patents[j].ExpiryDateParsed)
	})
	return patents
}

func exclusivitiesFor(tables *entities.OrangeBookTables, applicationNumber string) []entities.OrangeBookExclusivityRecord {
	exclusivities := []entities.OrangeBookExclusivityRecord{}
	if NormalizeApplicationNumber(applicationNumber) == "" {
		return exclusivities
	}
	key := matchKey(applicationNumber)

	for _, exclusivity := range tables.Exclusivities {
		if matchKey(exclusivity.ApplNo) != key {
			continue
		}
		// tables are shared between requests, the copy is labelled
		exclusivity.ExclusivityType = ClassifyExclusivity(exclusivity.ExclusivityCode)
		exclusivities = append(exclusivities, exclusivity)
	}

	sort.SliceStable(exclusivities, func(i, j int) bool {
		return exclusivities[i].ExclusivityDateParsed.After(exclusivities[j].ExclusivityDateParsed)
	})
	return exclusivities
}
