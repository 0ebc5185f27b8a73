package anomaly

import (
	"fmt"
	"sort"

	"retailpulse/internal/errors"
	"retailpulse/pkg/contracts/domain"
)

// Defaults for association-rule mining.
const (
	DefaultMinSupport    = 0.05
	DefaultMinConfidence = 0.3
)

// BasketOptions configures association-rule mining.
type BasketOptions struct {
	// MinSupport is the minimum fraction of baskets a pair must appear in.
	MinSupport float64
	// MinConfidence is the minimum antecedent -> consequent confidence.
	MinConfidence float64
}

// DefaultBasketOptions returns the standard mining thresholds.
func DefaultBasketOptions() BasketOptions {
	return BasketOptions{
		MinSupport:    DefaultMinSupport,
		MinConfidence: DefaultMinConfidence,
	}
}

// Validate checks the option ranges.
func (o BasketOptions) Validate() error {
	if o.MinSupport <= 0 || o.MinSupport > 1 {
		return errors.E(errors.KindConfigurationError, "min support must be in (0, 1], got %g", o.MinSupport)
	}
	if o.MinConfidence <= 0 || o.MinConfidence > 1 {
		return errors.E(errors.KindConfigurationError, "min confidence must be in (0, 1], got %g", o.MinConfidence)
	}
	return nil
}

// MineRules reconstructs baskets as the product sets co-occurring under the
// same (date, store, customer segment) key and derives pairwise association
// rules meeting the support and confidence thresholds.
//
// Candidate generation is exhaustive pairwise enumeration, O(items^2). That
// is fine at upload scale (hundreds of distinct products); true Apriori
// pruning only pays off far beyond it.
func MineRules(records []domain.TransactionRecord, opts BasketOptions) ([]domain.AssociationRule, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if len(records) < MinObservations {
		return nil, errors.E(errors.KindInsufficientData,
			"association mining requires at least %d transactions, got %d", MinObservations, len(records))
	}

	baskets := buildBaskets(records)
	total := float64(len(baskets))
	if total == 0 {
		return []domain.AssociationRule{}, nil
	}

	// Item and pair supports over distinct baskets.
	itemCounts := make(map[string]int)
	pairCounts := make(map[[2]string]int)
	for _, basket := range baskets {
		items := make([]string, 0, len(basket))
		for item := range basket {
			items = append(items, item)
		}
		sort.Strings(items)
		for i, item := range items {
			itemCounts[item]++
			for _, other := range items[i+1:] {
				pairCounts[[2]string{item, other}]++
			}
		}
	}

	var rules []domain.AssociationRule
	for pair, count := range pairCounts {
		pairSupport := float64(count) / total
		if pairSupport < opts.MinSupport {
			continue
		}
		// Derive a rule in both directions; each has its own confidence.
		rules = appendRule(rules, pair[0], pair[1], pairSupport, itemCounts, total, opts.MinConfidence)
		rules = appendRule(rules, pair[1], pair[0], pairSupport, itemCounts, total, opts.MinConfidence)
	}

	sort.Slice(rules, func(i, j int) bool {
		if rules[i].Lift != rules[j].Lift {
			return rules[i].Lift > rules[j].Lift
		}
		if rules[i].Confidence != rules[j].Confidence {
			return rules[i].Confidence > rules[j].Confidence
		}
		if rules[i].Antecedent != rules[j].Antecedent {
			return rules[i].Antecedent < rules[j].Antecedent
		}
		return rules[i].Consequent < rules[j].Consequent
	})

	return rules, nil
}

// buildBaskets groups product sets by (date, store, customer segment).
func buildBaskets(records []domain.TransactionRecord) map[string]map[string]struct{} {
	baskets := make(map[string]map[string]struct{})
	for _, record := range records {
		key := fmt.Sprintf("%s|%s|%s", record.Date.Format("2006-01-02"), record.Store, record.CustomerSegment)
		basket, ok := baskets[key]
		if !ok {
			basket = make(map[string]struct{})
			baskets[key] = basket
		}
		basket[record.Product] = struct{}{}
	}
	return baskets
}

// appendRule adds antecedent -> consequent if its confidence clears the bar.
func appendRule(rules []domain.AssociationRule, antecedent, consequent string, pairSupport float64, itemCounts map[string]int, total float64, minConfidence float64) []domain.AssociationRule {
	antecedentSupport := float64(itemCounts[antecedent]) / total
	consequentSupport := float64(itemCounts[consequent]) / total
	if antecedentSupport == 0 || consequentSupport == 0 {
		return rules
	}
	confidence := pairSupport / antecedentSupport
	if confidence < minConfidence {
		return rules
	}
	return append(rules, domain.AssociationRule{
		Antecedent: antecedent,
		Consequent: consequent,
		Support:    pairSupport,
		Confidence: confidence,
		Lift:       confidence / consequentSupport,
	})
}
