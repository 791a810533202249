package services

import "slices"

type WishlistAPI interface {
	ToggleWishlist(token, productID string) error
	Wishlist(token string) ([]string, error)
}

type WishlistService struct {
	API WishlistAPI
}

func NewWishlistService(api WishlistAPI) *WishlistService { return &WishlistService{API: api} }

// Toggle flips productID in the wishlist and returns the refreshed list.
// Every call reaches the backend; repeated toggles are not collapsed.
func (s *WishlistService) Toggle(token, productID string) ([]string, error) {
	if err := s.API.ToggleWishlist(token, productID); err != nil {
		return nil, err
	}
	return s.API.Wishlist(token)
}

func (s *WishlistService) Contains(token, productID string) (bool, error) {
	ids, err := s.API.Wishlist(token)
	if err != nil {
		return false, err
	}
	return slices.Contains(ids, productID), nil
}
