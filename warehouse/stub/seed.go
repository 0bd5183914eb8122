/*
seed.go - Schema and demo dataset for the stub warehouse

PURPOSE:
  Creates one local table per registered dataset and fills it with a
  small deterministic grid of monthly KPI rows: every month of 2025
  crossed with a handful of megabrands, regions, wholesalers, and
  channels, both CORE and reserved AO segment rows. Deterministic so
  end-to-end tests can assert on aggregate values.
*/
package stub

import (
	"fmt"
	"strings"
)

// datasetTables maps the fully-qualified dataset names the compiler
// emits to local SQLite table names.
var datasetTables = map[string]string{
	"prod_gold.sales.kpi_monthly_agg":      "kpi_monthly_agg",
	"prod_gold.sales.kpi_share_monthly":    "kpi_share_monthly",
	"prod_gold.sales.kpi_velocity_monthly": "kpi_velocity_monthly",
	"prod_gold.sales.kpi_dist_monthly":     "kpi_dist_monthly",
}

// rewriteDatasets swaps dataset names for local table names. SQLite
// has no catalog.schema qualifiers, so the swap happens textually on
// the known names only.
func rewriteDatasets(statement string) string {
	for dataset, table := range datasetTables {
		statement = strings.ReplaceAll(statement, dataset, table)
	}
	return statement
}

// demo dimension grid
var (
	seedMegabrands = []string{"Alpha Light", "Beta Premium", "Castle Draft"}
	seedRegions    = map[string]string{"Alpha Light": "Northeast", "Beta Premium": "Southwest", "Castle Draft": "Midwest"}
	seedStates     = map[string]string{"Northeast": "NY", "Southwest": "TX", "Midwest": "OH"}
	seedWslr       = map[string][2]string{"Northeast": {"W100", "Empire Dist"}, "Southwest": {"W200", "Lone Star Dist"}, "Midwest": {"W300", "Buckeye Dist"}}
	seedChannels   = []string{"Grocery", "On-Premise"}
	seedSegments   = []string{"CORE", "AO"}
)

// valueSchemas lists the measure columns of each table.
var valueSchemas = map[string][]string{
	"kpi_monthly_agg":      {"STRs_CY", "STRs_LY", "net_rev_CY", "net_rev_LY"},
	"kpi_share_monthly":    {"share_pts_CY", "share_pts_LY"},
	"kpi_velocity_monthly": {"str_per_pod_CY", "str_per_pod_LY"},
	"kpi_dist_monthly":     {"pod_cnt_CY", "pod_cnt_LY"},
}

func (s *Server) seed() error {
	for table, measures := range valueSchemas {
		ddl := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			cal_yr_mo_nbr INTEGER NOT NULL,
			megabrand_nm TEXT NOT NULL,
			rgn_nm TEXT NOT NULL,
			st_cd TEXT NOT NULL,
			wslr_id TEXT NOT NULL,
			wslr_nm TEXT NOT NULL,
			trade_chnl_nm TEXT NOT NULL,
			seg_nm TEXT NOT NULL`, table)
		for _, m := range measures {
			ddl += fmt.Sprintf(",\n\t\t\t%s REAL", m)
		}
		ddl += "\n\t\t)"
		if _, err := s.db.Exec(ddl); err != nil {
			return err
		}

		var n int
		if err := s.db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&n); err != nil {
			return err
		}
		if n > 0 {
			continue // already seeded (file-backed database reopened)
		}
		if err := s.seedTable(table, measures); err != nil {
			return err
		}
	}
	return nil
}

func (s *Server) seedTable(table string, measures []string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	insert := fmt.Sprintf(
		"INSERT INTO %s (cal_yr_mo_nbr, megabrand_nm, rgn_nm, st_cd, wslr_id, wslr_nm, trade_chnl_nm, seg_nm",
		table)
	placeholders := "?, ?, ?, ?, ?, ?, ?, ?"
	for _, m := range measures {
		insert += ", " + m
		placeholders += ", ?"
	}
	insert += ") VALUES (" + placeholders + ")"

	stmt, err := tx.Prepare(insert)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for month := 1; month <= 12; month++ {
		yrMo := 202500 + month
		for bi, brand := range seedMegabrands {
			region := seedRegions[brand]
			state := seedStates[region]
			wslr := seedWslr[region]
			for ci, channel := range seedChannels {
				for _, segment := range seedSegments {
					args := []any{yrMo, brand, region, state, wslr[0], wslr[1], channel, segment}
					// Deterministic measures: vary by month, brand and
					// channel; prior year runs 10% behind.
					base := float64(100*(bi+1) + 10*ci + month)
					if segment == "AO" {
						base = base / 4
					}
					for mi := range measures {
						v := base
						if mi%2 == 1 { // _LY column
							v = base * 0.9
						}
						args = append(args, v)
					}
					if _, err := stmt.Exec(args...); err != nil {
						return err
					}
				}
			}
		}
	}
	return tx.Commit()
}
