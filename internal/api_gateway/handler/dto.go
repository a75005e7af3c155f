package handler

// CreateAccountRequest represents a request to create a new account
type CreateAccountRequest struct {
	AccountNumber string `json:"account_number" binding:"required"`
	OwnerName     string `json:"owner_name" binding:"required"`
}

// AccountResponse represents an account in API responses
type AccountResponse struct {
	ID            string `json:"id"`
	AccountNumber string `json:"account_number"`
	OwnerName     string `json:"owner_name"`
	Balance       string `json:"balance"`
	TotalIncome   string `json:"total_income"`
	TotalExpenses string `json:"total_expenses"`
	Version       int    `json:"version"`
	CreatedAt     string `json:"created_at"`
	UpdatedAt     string `json:"updated_at"`
	DeletedAt     string `json:"deleted_at,omitempty"`
}

// CreateTransactionRequest represents a request to execute a deposit or withdrawal
type CreateTransactionRequest struct {
	AccountID   string         `json:"account_id" binding:"required,uuid"`
	Type        string         `json:"type" binding:"required,oneof=DEPOSIT WITHDRAWAL"`
	Amount      string         `json:"amount" binding:"required"`
	Description string         `json:"description" binding:"required"`
	ReferenceID string         `json:"reference_id,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// CreateTransferRequest represents a request to move funds between two accounts
type CreateTransferRequest struct {
	SourceAccountID string         `json:"source_account_id" binding:"required,uuid"`
	TargetAccountID string         `json:"target_account_id" binding:"required,uuid"`
	Amount          string         `json:"amount" binding:"required"`
	Description     string         `json:"description" binding:"required"`
	ReferenceID     string         `json:"reference_id,omitempty"`
	Metadata        map[string]any `json:"metadata,omitempty"`
}

// TransactionResponse represents a transaction in API responses
type TransactionResponse struct {
	ID              string         `json:"id"`
	AccountID       string         `json:"account_id"`
	TargetAccountID string         `json:"target_account_id,omitempty"`
	Type            string         `json:"type"`
	Amount          string         `json:"amount"`
	Description     string         `json:"description"`
	Status          string         `json:"status"`
	ReferenceID     string         `json:"reference_id,omitempty"`
	Metadata        map[string]any `json:"metadata,omitempty"`
	CreatedAt       string         `json:"created_at"`
}

// TransferResponse reports the outcome of a transfer saga
type TransferResponse struct {
	State    string               `json:"state"`
	Debit    *TransactionResponse `json:"debit,omitempty"`
	Credit   *TransactionResponse `json:"credit,omitempty"`
	Reversal *TransactionResponse `json:"reversal,omitempty"`
}

// AuditEntryResponse represents an audit trail entry in API responses
type AuditEntryResponse struct {
	ID         string         `json:"id"`
	Action     string         `json:"action"`
	EntityID   string         `json:"entity_id"`
	EntityType string         `json:"entity_type"`
	OldValues  map[string]any `json:"old_values,omitempty"`
	NewValues  map[string]any `json:"new_values,omitempty"`
	CreatedAt  string         `json:"created_at"`
}

// PaginationParams represents pagination parameters for list endpoints
type PaginationParams struct {
	Page    int `form:"page,default=1" binding:"min=1"`
	PerPage int `form:"per_page,default=10" binding:"min=1,max=100"`
}

// TransactionFilterParams represents filter parameters for transaction listings
type TransactionFilterParams struct {
	PaginationParams
	Type   string `form:"type" binding:"omitempty,oneof=DEPOSIT WITHDRAWAL TRANSFER_OUT TRANSFER_IN"`
	Status string `form:"status" binding:"omitempty,oneof=PENDING COMPLETED FAILED"`
}
