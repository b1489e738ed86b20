package catalog

import (
	"errors"
	"strings"
)

var (
	errNameRequired  = errors.New("catalog: product name is required")
	errNegativePrice = errors.New("catalog: prices must not be negative")
	errNegativeStock = errors.New("catalog: stock must not be negative")
)

func (s *Service) validate(p Product) error {
	if strings.TrimSpace(p.Name) == "" {
		return errNameRequired
	}
	if p.CostPrice.IsNegative() || p.Price.IsNegative() {
		return errNegativePrice
	}
	if p.Stock < 0 {
		return errNegativeStock
	}
	return nil
}
