package models

// Counter учётная запись кассы.
type Counter struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	Role      Role   `json:"role"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

// CounterInput тело POST /api/counters/register. Role опциональна.
type CounterInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     Role   `json:"role,omitempty"`
}

// CounterPatch частичное обновление кассы.
type CounterPatch struct {
	Username *string `json:"username,omitempty"`
	Role     *Role   `json:"role,omitempty"`
}

// Ticket вид билета.
type Ticket struct {
	ID         int64   `json:"id"`
	Price      float64 `json:"price"`
	TicketType string  `json:"ticket_type"`
	ShowName   string  `json:"show_name"`
	Category   string  `json:"category"`
	CreatedAt  string  `json:"createdAt"`
	UpdatedAt  string  `json:"updatedAt"`
}

// TicketInput новый билет без серверных полей.
type TicketInput struct {
	Price      float64 `json:"price"`
	TicketType string  `json:"ticket_type"`
	ShowName   string  `json:"show_name"`
	Category   string  `json:"category"`
}

// TicketPatch частичное обновление билета, nil-поля не отправляются.
type TicketPatch struct {
	Price      *float64 `json:"price,omitempty"`
	TicketType *string  `json:"ticket_type,omitempty"`
	ShowName   *string  `json:"show_name,omitempty"`
	Category   *string  `json:"category,omitempty"`
}

// Guide экскурсовод или водитель.
type Guide struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Number      string `json:"number"`
	VehicleType string `json:"vehicle_type"`
	Score       int    `json:"score"` // 0–1000
	CreatedAt   string `json:"createdAt"`
	UpdatedAt   string `json:"updatedAt"`
}

// GuideInput новый гид без серверных полей.
type GuideInput struct {
	Name        string `json:"name"`
	Number      string `json:"number"`
	VehicleType string `json:"vehicle_type"`
	Score       int    `json:"score"`
}

// GuidePatch частичное обновление гида.
type GuidePatch struct {
	Name        *string `json:"name,omitempty"`
	Number      *string `json:"number,omitempty"`
	VehicleType *string `json:"vehicle_type,omitempty"`
	Score       *int    `json:"score,omitempty"`
}

// Transaction строка продажи из календарного поиска.
type Transaction struct {
	ID        int64  `json:"id"`
	SNo       int    `json:"sNo"`
	InvoiceNo string `json:"invoiceNo"`
	Date      string `json:"date"`
	ShowName  string `json:"showName"`
	Category  string `json:"category"`
	Counter   string `json:"counter"`
	Adult     int    `json:"adult"`
	Child     int    `json:"child"`
	TotalPaid string `json:"totalPaid"`
}

// TransactionPatch частичное обновление транзакции.
type TransactionPatch struct {
	InvoiceNo *string `json:"invoiceNo,omitempty"`
	Date      *string `json:"date,omitempty"`
	ShowName  *string `json:"showName,omitempty"`
	Category  *string `json:"category,omitempty"`
	Counter   *string `json:"counter,omitempty"`
	Adult     *int    `json:"adult,omitempty"`
	Child     *int    `json:"child,omitempty"`
	TotalPaid *string `json:"totalPaid,omitempty"`
}

// CalendarData итоги и транзакции за диапазон дат включительно.
type CalendarData struct {
	TotalSales   int           `json:"totalSales"`
	TotalAmount  string        `json:"totalAmount"`
	Transactions []Transaction `json:"transactions"`
}
