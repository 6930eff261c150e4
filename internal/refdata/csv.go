package refdata

import (
	"encoding/csv"
	"io"
	"os"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"
)

func readCatalogCSV(path string) ([]catalogRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrap(err, "refdata: open csv")
	}
	defer f.Close()

	dec, err := newDecoder(f, catalogColumns)
	if err != nil {
		return nil, err
	}

	var out []catalogRow
	for {
		var row catalogRow
		if err := dec.Decode(&row); err == io.EOF {
			break
		} else if err != nil {
			return nil, eris.Wrap(err, "refdata: decode catalog row")
		}
		out = append(out, row)
	}

	return out, nil
}

func readOfferCSV(path string) ([]offerRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrap(err, "refdata: open csv")
	}
	defer f.Close()

	dec, err := newDecoder(f, offerColumns)
	if err != nil {
		return nil, err
	}

	var out []offerRow
	for {
		var row offerRow
		if err := dec.Decode(&row); err == io.EOF {
			break
		} else if err != nil {
			return nil, eris.Wrap(err, "refdata: decode offer row")
		}
		out = append(out, row)
	}

	return out, nil
}

// newDecoder builds a header-mapped CSV decoder and validates that every
// required column is present before any row is read.
func newDecoder(r io.Reader, required []string) (*csvutil.Decoder, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	dec, err := csvutil.NewDecoder(reader)
	if err != nil {
		return nil, eris.Wrap(err, "refdata: read csv header")
	}

	if _, err := headerIndex(dec.Header(), required); err != nil {
		return nil, err
	}

	return dec, nil
}
