package parsers

import (
	"io"

	"github.com/username/trimestral/src/models"
)

// Parser turns one payment export into raw payment records. Each parser owns
// one input dialect and tags the records it produces accordingly.
type Parser interface {
	Parse(file io.Reader) ([]models.RawPaymentRecord, error)
}
