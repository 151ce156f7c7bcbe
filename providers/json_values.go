package providers

import (
	"go.uber.org/zap"
)

// GetJSONValues evaluates every path against body and returns the raw JSON
// text of all matches as one flat list: all matches of paths[0] in document
// order, then all matches of paths[1], and so on. String values keep their
// surrounding quotes.
func GetJSONValues(body []byte, paths []string) ([]string, error) {
	d, err := ParseDocument(body)
	if err != nil {
		return nil, err
	}

	values := make([]string, 0, len(paths))
	for _, p := range paths {
		ranges, err := d.ValueRanges(p)
		if err != nil {
			return nil, err
		}
		for _, r := range ranges {
			values = append(values, string(d.raw[r.Start:r.End]))
		}
	}

	logger.Debug("Extracted JSON values",
		zap.Int("paths", len(paths)),
		zap.Int("values", len(values)))
	return values, nil
}
