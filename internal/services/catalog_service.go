package services

import (
	"encoding/json"
	"strings"

	"shopfront/internal/domain"
)

// ProductSource is the part of the backend the catalog reads from.
type ProductSource interface {
	Product(token, id string) (domain.ProductRecord, error)
}

type CatalogService struct {
	API         ProductSource
	Placeholder string
}

func NewCatalogService(api ProductSource, placeholder string) *CatalogService {
	return &CatalogService{API: api, Placeholder: placeholder}
}

// Display fetches a product and turns it into its view model.
func (s *CatalogService) Display(token, id string) (domain.DisplayProduct, error) {
	rec, err := s.API.Product(token, id)
	if err != nil {
		return domain.DisplayProduct{}, err
	}
	return BuildDisplayProduct(rec, s.Placeholder), nil
}

// NormalizeImages turns whatever the backend sent as images into a non-empty
// list of URLs. A string value is tried as a JSON array first and otherwise
// used as a single URL.
func NormalizeImages(f domain.ImageField, placeholder string) []string {
	switch f.Kind {
	case domain.ImagesList:
		if len(f.List) > 0 {
			return append([]string(nil), f.List...)
		}
	case domain.ImagesText:
		if strings.TrimSpace(f.Text) == "" {
			break
		}
		var list []string
		if err := json.Unmarshal([]byte(f.Text), &list); err == nil && len(list) > 0 {
			return list
		}
		return []string{f.Text}
	}
	return []string{placeholder}
}

// BuildDisplayProduct fills every missing field of rec with its default.
func BuildDisplayProduct(rec domain.ProductRecord, placeholder string) domain.DisplayProduct {
	p := domain.DisplayProduct{
		ID:       rec.ID.String(),
		Title:    "Product",
		Images:   NormalizeImages(rec.Images, placeholder),
		Shop:     domain.ShopRef{Name: "Unknown Shop"},
		Category: "General",
		Buying:   rec.Type == domain.ListingBuying,
	}
	if rec.Name != nil && strings.TrimSpace(*rec.Name) != "" {
		p.Title = *rec.Name
	}
	if rec.Price != nil {
		p.Price = *rec.Price
	}
	if rec.Stock != nil {
		p.Stock = *rec.Stock
	}
	if rec.Description != nil {
		p.Description = *rec.Description
	}
	if rec.Shop != nil {
		p.Shop.ID = rec.Shop.ID.Ptr()
		if strings.TrimSpace(rec.Shop.Name) != "" {
			p.Shop.Name = rec.Shop.Name
		}
	}
	if rec.Category != nil && strings.TrimSpace(*rec.Category) != "" {
		p.Category = *rec.Category
	}
	return p
}
