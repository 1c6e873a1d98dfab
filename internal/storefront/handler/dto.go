package handler

// DepositRequest represents a request to add funds to the wallet
type DepositRequest struct {
	Amount int64 `json:"amount" binding:"required,gt=0"`
}

// DepositResponse represents the outcome of a deposit in API responses
type DepositResponse struct {
	EntryID   string `json:"entry_id"`
	Amount    int64  `json:"amount"`
	Balance   int64  `json:"balance"`
	CreatedAt string `json:"created_at"`
}

// BalanceResponse represents the wallet balance in API responses
type BalanceResponse struct {
	Balance int64 `json:"balance"`
}

// LedgerEntryResponse represents a single ledger entry in API responses
type LedgerEntryResponse struct {
	ID          string `json:"id"`
	Amount      int64  `json:"amount"`
	Kind        string `json:"kind"`
	Description string `json:"description,omitempty"`
	CreatedAt   string `json:"created_at"`
}

// AddCartItemRequest represents a request to put a game in the cart
type AddCartItemRequest struct {
	AppID int64 `json:"app_id" binding:"required,gt=0"`
}

// CartItemResponse represents a cart item in API responses
type CartItemResponse struct {
	AppID   int64  `json:"app_id"`
	AddedAt string `json:"added_at"`
}

// CartCountResponse represents the cart item count in API responses
type CartCountResponse struct {
	Count int64 `json:"count"`
}

// CartResponse represents the cart contents with the payable total
type CartResponse struct {
	Items []CartItemResponse `json:"items"`
	Total int64              `json:"total"`
}

// OrderResponse represents a completed purchase in API responses
type OrderResponse struct {
	ID          string `json:"id"`
	AppID       int64  `json:"app_id"`
	Key         string `json:"key"`
	PricePaid   int64  `json:"price_paid"`
	PurchasedAt string `json:"purchased_at"`
}

// CheckoutResponse represents the outcome of a successful checkout
type CheckoutResponse struct {
	Orders []OrderResponse `json:"orders"`
	Total  int64           `json:"total"`
}

// PaginationParams represents pagination parameters for list endpoints
type PaginationParams struct {
	Page    int `form:"page,default=1" binding:"min=1"`
	PerPage int `form:"per_page,default=20" binding:"min=1,max=100"`
}
