package schema

// SupportTicketsTable represents the 'support_tickets' table
type SupportTicketsTable struct {
	Table     string
	ID        string
	UserID    string
	Email     string
	Subject   string
	Body      string
	Status    string
	CreatedAt string
	UpdatedAt string
}

// SupportTickets is the schema definition for support_tickets
var SupportTickets = SupportTicketsTable{
	Table:     "support_tickets",
	ID:        "support_ticket_id",
	UserID:    "user_id",
	Email:     "email",
	Subject:   "subject",
	Body:      "body",
	Status:    "status",
	CreatedAt: "created_at",
	UpdatedAt: "updated_at",
}
