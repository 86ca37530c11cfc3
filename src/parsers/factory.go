// src/parsers/factory.go
package parsers

import (
	"fmt"

	"github.com/username/trimestral/src/parsers/stripecsv"
	"github.com/username/trimestral/src/parsers/stripejson"
)

func GetParser(format string) (Parser, error) {
	switch format {
	case "csv":
		return stripecsv.NewParser(), nil
	case "json":
		return stripejson.NewParser(), nil
	default:
		return nil, fmt.Errorf("no parser available for format: %s", format)
	}
}
