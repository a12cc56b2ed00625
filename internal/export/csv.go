package export

import (
	"bytes"
	"encoding/csv"
	"io"
	"strconv"

	"github.com/miradorstack/sales-insights/internal/models"
	"github.com/miradorstack/sales-insights/internal/utils"
)

// Filename is the suggested download name of an exported view.
const Filename = "filtered_sales_data.csv"

// ContentType is the MIME type of an exported view.
const ContentType = "text/csv"

// Header lists the exported columns in SalesRecord field order.
var Header = []string{"date", "product", "category", "sales", "revenue", "profit", "region"}

// WriteCSV serialises view as a header line followed by one line per record.
func WriteCSV(w io.Writer, view []models.SalesRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return utils.NewAppError("export.csv", "write header", err)
	}

	row := make([]string, len(Header))
	for _, rec := range view {
		row[0] = rec.Date.Format(models.DateLayout)
		row[1] = rec.Product
		row[2] = rec.Category
		row[3] = strconv.Itoa(rec.Sales)
		row[4] = strconv.FormatInt(rec.Revenue, 10)
		row[5] = strconv.FormatFloat(rec.Profit, 'f', -1, 64)
		row[6] = rec.Region
		if err := cw.Write(row); err != nil {
			return utils.NewAppError("export.csv", "write row", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return utils.NewAppError("export.csv", "flush", err)
	}
	return nil
}

// Bytes renders view into memory.
func Bytes(view []models.SalesRecord) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, view); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
