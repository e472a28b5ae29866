package models

// CustomOrderFull представляет кастомный заказ с вложенными данными:
// переписка, дополнительные счета и товар
// swagger:model

type CustomOrderFull struct {
	CustomOrder
	Product                   Product          `json:"product"`
	ChatMessages              []ChatMessage    `json:"chatMessages"`
	AdditionalPaymentRequests []PaymentRequest `json:"additionalPaymentRequests"`
}
