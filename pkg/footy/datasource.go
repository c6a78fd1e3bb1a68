package footy

import (
	"encoding/csv"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/richard-senior/footy/internal/logger"
	"github.com/richard-senior/footy/pkg/transport"
)

// Datasource pulls historical results and manager tenures from the remote
// sources and upserts them into the store. Remote payloads are cached on
// disk so repeated imports do not hammer the sources.
type Datasource struct {
	store  *Store
	config *FootyConfig
	log    *logger.Logger
}

// NewDatasource returns a datasource writing into the given store
func NewDatasource(store *Store, config *FootyConfig, log *logger.Logger) *Datasource {
	if log == nil {
		log = logger.Default()
	}
	return &Datasource{
		store:  store,
		config: config,
		log:    log,
	}
}

/////////////////////////////////////////////////////////////////////////
////// Results CSV import
/////////////////////////////////////////////////////////////////////////

// ImportResults fetches one season's results CSV, parses it and upserts the
// fixtures and teams. The season is in "yyyy/yyyy" format.
func (d *Datasource) ImportResults(season string) error {
	csvData, err := d.GetResultsCSV(season)
	if err != nil {
		return err
	}
	fixtures, err := d.ParseResultsCSV(csvData, season)
	if err != nil {
		return err
	}
	if len(fixtures) == 0 {
		d.log.Warn("No fixtures parsed for season", season)
		return nil
	}
	persistables := make([]Persistable, len(fixtures))
	for i, f := range fixtures {
		persistables[i] = f
	}
	if err := d.store.BulkSave(persistables); err != nil {
		return fmt.Errorf("failed to save fixtures for %s: %w", season, err)
	}
	d.log.Info("Imported", len(fixtures), "fixtures for season", season)
	return nil
}

// GetResultsCSV returns the raw results CSV for a season, from the on-disk
// cache when present, otherwise from football-data.co.uk
func (d *Datasource) GetResultsCSV(season string) (string, error) {
	seasonPattern := regexp.MustCompile(`^\d{4}/\d{4}$`)
	if !seasonPattern.MatchString(season) {
		return "", fmt.Errorf("season must be in the format 'yyyy/yyyy'")
	}

	if err := os.MkdirAll(d.config.CachePath, 0755); err != nil {
		return "", fmt.Errorf("failed to create cache directory: %w", err)
	}

	safeSeason := strings.ReplaceAll(season, "/", "-")
	cacheFilename := fmt.Sprintf("%sraw-results-%s.csv", d.config.CachePath, safeSeason)

	if cacheData, err := os.ReadFile(cacheFilename); err == nil {
		d.log.Debug("Returning results from cached file for", season)
		return string(cacheData), nil
	}

	d.log.Info("Fetching historical results from football-data.co.uk for", season)
	url := fmt.Sprintf("https://www.football-data.co.uk/mmz4281/%s/%s.csv",
		nativeSeason(season), d.config.LeagueCode)
	response, err := transport.Fetch(url)
	if err != nil {
		return "", fmt.Errorf("failed to fetch results from external source: %w", err)
	}
	if err := os.WriteFile(cacheFilename, response, 0644); err != nil {
		d.log.Warn("Failed to write cache file", cacheFilename, err)
		// Continue processing even if caching fails
	}
	return string(response), nil
}

// ParseResultsCSV parses a football-data.co.uk results CSV into fixtures.
// Rows are ordered by date and assigned sequential fixture ids within the
// season. Team ids are resolved (or allocated) through the teams table.
func (d *Datasource) ParseResultsCSV(csvData, season string) ([]*Fixture, error) {
	reader := csv.NewReader(strings.NewReader(csvData))
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSV: %w", err)
	}
	if len(records) == 0 {
		return []*Fixture{}, nil
	}

	headers := records[0]
	if len(headers) > 0 {
		headers[0] = strings.TrimPrefix(headers[0], "\uFEFF")
	}

	var fixtures []*Fixture
	for i, record := range records[1:] {
		if len(record) < 2 {
			continue
		}
		row := make(map[string]string)
		for j, value := range record {
			if j < len(headers) {
				row[headers[j]] = strings.TrimSpace(value)
			}
		}
		if row["HomeTeam"] == "" || row["AwayTeam"] == "" {
			continue
		}

		fixture, err := d.parseResultsRow(row, season)
		if err != nil {
			d.log.Warn("Failed to parse fixture at row", i+2, err)
			continue
		}
		fixtures = append(fixtures, fixture)
	}

	// Fixture ids are positional within the season: sorted by date, ten
	// fixtures per game-week
	sort.SliceStable(fixtures, func(a, b int) bool {
		return fixtures[a].Date < fixtures[b].Date
	})
	for i, fixture := range fixtures {
		fixture.FixtureID = i + 1
	}
	return fixtures, nil
}

// parseResultsRow converts one CSV row into a Fixture
func (d *Datasource) parseResultsRow(row map[string]string, season string) (*Fixture, error) {
	homeTeam := cleanTeamName(row["HomeTeam"])
	awayTeam := cleanTeamName(row["AwayTeam"])
	if homeTeam == "" || awayTeam == "" {
		return nil, fmt.Errorf("missing team names")
	}

	homeID, err := d.store.IDForName(homeTeam)
	if err != nil {
		return nil, err
	}
	awayID, err := d.store.IDForName(awayTeam)
	if err != nil {
		return nil, err
	}

	date, err := parseResultsDate(row["Date"])
	if err != nil {
		return nil, err
	}

	fixture := &Fixture{
		Season:          season,
		Date:            date,
		HomeID:          homeID,
		AwayID:          awayID,
		HomeTeam:        homeTeam,
		AwayTeam:        awayTeam,
		HomeGoals:       intField(row, "FTHG"),
		AwayGoals:       intField(row, "FTAG"),
		HomeShots:       intField(row, "HS"),
		AwayShots:       intField(row, "AS"),
		HomeYellowCards: intField(row, "HY"),
		AwayYellowCards: intField(row, "AY"),
		HomeRedCards:    intField(row, "HR"),
		AwayRedCards:    intField(row, "AR"),
		B365HomeOdds:    floatField(row, "B365H"),
		B365DrawOdds:    floatField(row, "B365D"),
		B365AwayOdds:    floatField(row, "B365A"),
	}
	if result := row["FTR"]; result == "H" || result == "D" || result == "A" {
		fixture.FullTimeResult = result
	}
	return fixture, nil
}

// nativeSeason converts "2024/2025" to football-data's "2425" form
func nativeSeason(season string) string {
	parts := strings.Split(season, "/")
	if len(parts) != 2 || len(parts[0]) != 4 || len(parts[1]) != 4 {
		return season
	}
	return parts[0][2:] + parts[1][2:]
}

// cleanTeamName strips everything but letters and spaces
func cleanTeamName(name string) string {
	re := regexp.MustCompile(`[^a-zA-Z ]`)
	return strings.TrimSpace(re.ReplaceAllString(name, ""))
}

// parseResultsDate accepts the two date layouts football-data has used over
// the years and returns the canonical yyyy-mm-dd form
func parseResultsDate(value string) (string, error) {
	if value == "" {
		return "", fmt.Errorf("missing date")
	}
	for _, layout := range []string{"02/01/2006", "02/01/06"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t.Format("2006-01-02"), nil
		}
	}
	return "", fmt.Errorf("unparseable date %q", value)
}

func intField(row map[string]string, key string) int {
	if v, err := strconv.Atoi(row[key]); err == nil {
		return v
	}
	return -1
}

func floatField(row map[string]string, key string) float64 {
	if v, err := strconv.ParseFloat(row[key], 64); err == nil {
		return v
	}
	return -1.0
}

/////////////////////////////////////////////////////////////////////////
////// Manager tenure import
/////////////////////////////////////////////////////////////////////////

// ImportManagers fetches the managers page, scrapes the tenure table and
// upserts the spells into the managers table
func (d *Datasource) ImportManagers(url string) error {
	html, err := d.getManagerPage(url)
	if err != nil {
		return err
	}
	tenures, err := d.ParseManagerTable(html)
	if err != nil {
		return err
	}
	if len(tenures) == 0 {
		return fmt.Errorf("no manager tenures found at %s", url)
	}
	persistables := make([]Persistable, len(tenures))
	for i, t := range tenures {
		persistables[i] = t
	}
	if err := d.store.BulkSave(persistables); err != nil {
		return fmt.Errorf("failed to save manager tenures: %w", err)
	}
	d.log.Info("Imported", len(tenures), "manager tenures")
	return nil
}

// getManagerPage returns the managers page HTML, cached on disk
func (d *Datasource) getManagerPage(url string) (string, error) {
	if err := os.MkdirAll(d.config.CachePath, 0755); err != nil {
		return "", fmt.Errorf("failed to create cache directory: %w", err)
	}
	cacheFilename := d.config.CachePath + "raw-managers.html"

	if cacheData, err := os.ReadFile(cacheFilename); err == nil {
		d.log.Debug("Returning managers page from cache")
		return string(cacheData), nil
	}

	d.log.Info("Fetching managers page from", url)
	response, err := transport.Fetch(url)
	if err != nil {
		return "", fmt.Errorf("failed to fetch managers page: %w", err)
	}
	if err := os.WriteFile(cacheFilename, response, 0644); err != nil {
		d.log.Warn("Failed to write cache file", cacheFilename, err)
	}
	return string(response), nil
}

// ParseManagerTable scrapes manager tenure rows out of the page's first
// table with name, club, from and until columns. An empty or "present"
// until cell means the tenure is still active.
func (d *Datasource) ParseManagerTable(html string) ([]*ManagerTenure, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse managers page: %w", err)
	}

	var tenures []*ManagerTenure
	var rowErr error

	doc.Find("table tr").EachWithBreak(func(i int, tr *goquery.Selection) bool {
		cells := tr.Find("td")
		if cells.Length() < 3 {
			// Header or layout row
			return true
		}
		manager := strings.TrimSpace(cells.Eq(0).Text())
		club := cleanTeamName(cells.Eq(1).Text())
		from := strings.TrimSpace(cells.Eq(2).Text())
		until := ""
		if cells.Length() > 3 {
			until = strings.TrimSpace(cells.Eq(3).Text())
		}
		if manager == "" || club == "" || from == "" {
			return true
		}

		teamID, err := d.store.IDForName(club)
		if err != nil {
			rowErr = err
			return false
		}
		start, err := parseManagerDate(from)
		if err != nil {
			d.log.Warn("Skipping manager row with bad start date", manager, from)
			return true
		}
		end := ""
		if until != "" && !strings.EqualFold(until, "present") {
			if parsed, err := parseManagerDate(until); err == nil {
				end = parsed
			}
		}

		tenures = append(tenures, &ManagerTenure{
			TeamID:    teamID,
			Manager:   manager,
			StartDate: start,
			EndDate:   end,
		})
		return true
	})

	if rowErr != nil {
		return nil, rowErr
	}
	return tenures, nil
}

// parseManagerDate accepts the date forms seen on the managers page
func parseManagerDate(value string) (string, error) {
	for _, layout := range []string{"2 January 2006", "02/01/2006", "2006-01-02"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t.Format("2006-01-02"), nil
		}
	}
	return "", fmt.Errorf("unparseable date %q", value)
}
