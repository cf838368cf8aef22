package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"

	"github.com/kilianp07/gridsim/core/metrics"
)

// WriteJSON writes the step records to w as a JSON array.
func WriteJSON(w io.Writer, recs []metrics.StepRecord) error {
	enc := json.NewEncoder(w)
	return enc.Encode(recs)
}

// WriteCSV writes the step records to w in CSV format with a header row.
func WriteCSV(w io.Writer, recs []metrics.StepRecord) error {
	cw := csv.NewWriter(w)
	header := []string{
		"run_id", "episode", "step", "seed", "reward", "cost", "co2",
		"waste_mw", "blackout_mw", "balance_mw", "demand_mw", "renewable_mw",
		"terminated", "truncated",
	}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, r := range recs {
		rec := []string{
			r.RunID,
			strconv.Itoa(r.Episode),
			strconv.Itoa(r.Step),
			strconv.FormatInt(r.Seed, 10),
			fmtFloat(r.Reward),
			fmtFloat(r.Cost),
			fmtFloat(r.CO2),
			fmtFloat(r.WasteMW),
			fmtFloat(r.BlackoutMW),
			fmtFloat(r.BalanceMW),
			fmtFloat(r.DemandMW),
			fmtFloat(r.RenewableMW),
			strconv.FormatBool(r.Terminated),
			strconv.FormatBool(r.Truncated),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func fmtFloat(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
