package model

// LocalCartItem is a client-supplied cart hint. It is trusted only as context
// text for the assistant, never as authoritative inventory.
type LocalCartItem struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

// ProductSuggestion deliberately carries no product id and no exact stock.
type ProductSuggestion struct {
	Name        string      `json:"name"`
	Price       float64     `json:"price"`
	StockStatus StockStatus `json:"stockStatus"`
	Category    string      `json:"category"`
}

const (
	ChatSourceHeuristic  = "heuristic"
	ChatSourceSuggestion = "suggestion"
	ChatSourceRetrieval  = "retrieval+llm"
	ChatSourceFallback   = "fallback"
)

// ChatTurn is one request/response exchange of the assistant.
type ChatTurn struct {
	Reply     string              `json:"reply"`
	Products  []ProductSuggestion `json:"products"`
	Source    string              `json:"source"`
	LatencyMs int64               `json:"latencyMs"`
}

func SuggestionOf(f ProductFact) ProductSuggestion {
	return ProductSuggestion{
		Name:        f.Name,
		Price:       f.Price,
		StockStatus: f.Availability(),
		Category:    f.Category,
	}
}
