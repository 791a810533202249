package domain

// ListingBuying marks a record where the shop wants to acquire items from users.
const ListingBuying = "Buying"

// ProductRecord is the product as the backend returns it. Optional fields are
// pointers so that "missing" and "zero" stay distinguishable.
type ProductRecord struct {
	ID          ID          `json:"id"`
	Name        *string     `json:"name"`
	Price       *float64    `json:"price"`
	Stock       *int        `json:"stock"`
	Description *string     `json:"description"`
	Images      ImageField  `json:"images"`
	Shop        *ShopRecord `json:"shop"`
	Category    *string     `json:"category"`
	Type        string      `json:"type"`
}

type ShopRecord struct {
	ID   *ID    `json:"id"`
	Name string `json:"name"`
}

// ShopRef is the shop as shown and stored locally. ID is nil when unknown.
type ShopRef struct {
	ID   *string `json:"id"`
	Name string  `json:"name"`
}

// DisplayProduct is the defaulted view model of a ProductRecord.
// Images is never empty.
type DisplayProduct struct {
	ID          string
	Title       string
	Price       float64
	Stock       int
	Description string
	Images      []string
	Shop        ShopRef
	Category    string
	Buying      bool
}

// Gallery is the image list with a selected-index cursor.
type Gallery struct {
	Images   []string
	Selected int
}

// NewGallery clamps selected into the valid index range.
func NewGallery(images []string, selected int) Gallery {
	if selected >= len(images) {
		selected = len(images) - 1
	}
	if selected < 0 {
		selected = 0
	}
	return Gallery{Images: images, Selected: selected}
}

func (g Gallery) Current() string {
	if len(g.Images) == 0 {
		return ""
	}
	return g.Images[g.Selected]
}

type CartLineItem struct {
	ProductID string   `validate:"required"`
	Name      string   `validate:"required"`
	UnitPrice float64
	Images    []string `validate:"min=1"`
	Shop      ShopRef
	Quantity  int `validate:"min=1"`
}

type OrderItem struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

type OrderRequest struct {
	Items           []OrderItem `json:"items"`
	ShippingAddress string      `json:"shippingAddress"`
	ShippingCity    string      `json:"shippingCity"`
	ShippingZip     string      `json:"shippingZip"`
}

type OfferRequest struct {
	ProductID     string   `json:"productId" validate:"required"`
	Quantity      int      `json:"quantity" validate:"min=1"`
	ContactNumber string   `json:"contactNumber" validate:"required,max=32"`
	Description   string   `json:"description" validate:"max=2000"`
	Images        []string `json:"images" validate:"max=3,dive,datauri"`
}
