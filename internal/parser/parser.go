package parser

import (
	"github.com/fjglira/GoRPA-OrderBot/internal/domain"
)

// Parser turns the raw orders file into order records, in file order.
type Parser interface {
	Parse(filePath string, content []byte) ([]domain.OrderRecord, error)
}

// Columns names the header of each record field.
type Columns struct {
	Reference string // optional; empty means not read
	Head      string
	Body      string
	Legs      string
	Address   string
}
