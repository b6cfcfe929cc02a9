package model

type Product struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	OldPrice    float64 `json:"old_price"`
	CategoryID  int64   `json:"category_id"`
	ImageKey    string  `json:"image_key"`
	Stock       int     `json:"stock"`
	IsFeatured  bool    `json:"is_featured"`
	Ctime       int64   `json:"ctime"`
	Mtime       int64   `json:"mtime"`
}

type Category struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	IconClass   string `json:"icon_class"`
}

type CartItem struct {
	SessionID string `json:"session_id"`
	ProductID int64  `json:"product_id"`
	Quantity  int    `json:"quantity"`
	Mtime     int64  `json:"mtime"`
}

// ProductFact is the read-only catalog snapshot the chat core works with.
// It is produced fresh per request by the catalog join and never written back.
type ProductFact struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Category    string  `json:"category"`
	Stock       int     `json:"stock"`
	IsFeatured  bool    `json:"is_featured"`
}

func (f ProductFact) Availability() StockStatus {
	return AvailabilityOf(f.Stock)
}

func (f ProductFact) InStock() bool {
	return f.Stock > 0
}
