package markets

import (
	"fmt"
	"strconv"

	"github.com/BurntSushi/toml"
	"github.com/joefazee/roundbet/internal/validator"
	"github.com/joefazee/roundbet/models"
	"github.com/shopspring/decimal"
)

var harufMarkets = []struct{ id, name string }{
	{"delhi-bazaar", "Delhi Bazaar"},
	{"dhan-kuber", "Dhan Kuber"},
	{"disawar", "Disawar"},
	{"faridabad", "Faridabad"},
	{"gali", "Gali"},
	{"shree-ganesh", "Shree Ganesh"},
	{"ghaziabad", "Ghaziabad"},
}

var rouletteRed = []int{1, 3, 5, 7, 9, 12, 14, 16, 18, 19, 21, 23, 25, 27, 30, 32, 34, 36}

// DefaultCatalogue returns the markets the platform ships with.
func DefaultCatalogue() []models.Market {
	catalogue := []models.Market{{
		ID:                     "wingame",
		Name:                   "WinGame",
		Game:                   models.GameWinGame,
		Domain:                 models.CandidateDomain{Kind: models.DomainKindRange, Min: 1, Max: 12},
		CoverGroups:            models.CoverGroups{},
		PayoutMultiplier:       decimal.NewFromInt(10),
		MinStake:               decimal.NewFromInt(10),
		BettingDurationSeconds: 300,
		ResultsDurationSeconds: 60,
		ResolutionMode:         models.ResolutionAuto,
		Timezone:               "UTC",
		IsActive:               true,
	}}

	for _, h := range harufMarkets {
		open, closing := "15:00", "20:40"
		catalogue = append(catalogue, models.Market{
			ID:                     h.id,
			Name:                   h.name,
			Game:                   models.GameHaruf,
			Domain:                 models.CandidateDomain{Kind: models.DomainKindRange, Min: 0, Max: 99, Width: 2},
			CoverGroups:            harufCovers(),
			PayoutMultiplier:       decimal.NewFromInt(90),
			MinStake:               decimal.NewFromInt(10),
			BettingDurationSeconds: 20400,
			ResultsDurationSeconds: 10800,
			ResolutionMode:         models.ResolutionManual,
			OpenAt:                 &open,
			CloseAt:                &closing,
			Timezone:               "Asia/Kolkata",
			IsActive:               true,
		})
	}

	values := []string{"0", "00"}
	for n := 1; n <= 36; n++ {
		values = append(values, strconv.Itoa(n))
	}
	catalogue = append(catalogue, models.Market{
		ID:                     "roulette",
		Name:                   "Roulette",
		Game:                   models.GameRoulette,
		Domain:                 models.CandidateDomain{Kind: models.DomainKindSet, Values: values},
		CoverGroups:            rouletteCovers(),
		PayoutMultiplier:       decimal.NewFromInt(35),
		MinStake:               decimal.NewFromInt(50),
		BettingDurationSeconds: 840,
		ResultsDurationSeconds: 60,
		ResolutionMode:         models.ResolutionAuto,
		Timezone:               "UTC",
		IsActive:               true,
	})

	return catalogue
}

// harufCovers builds andar-N (first digit N) and bahar-N (second digit N).
func harufCovers() models.CoverGroups {
	groups := make(models.CoverGroups, 20)
	for d := 0; d <= 9; d++ {
		andar := make([]string, 0, 10)
		bahar := make([]string, 0, 10)
		for o := 0; o <= 9; o++ {
			andar = append(andar, fmt.Sprintf("%d%d", d, o))
			bahar = append(bahar, fmt.Sprintf("%d%d", o, d))
		}
		groups[fmt.Sprintf("andar-%d", d)] = andar
		groups[fmt.Sprintf("bahar-%d", d)] = bahar
	}
	return groups
}

func rouletteCovers() models.CoverGroups {
	red := make(map[int]bool, len(rouletteRed))
	for _, n := range rouletteRed {
		red[n] = true
	}

	groups := models.CoverGroups{}
	add := func(name string, n int) {
		groups[name] = append(groups[name], strconv.Itoa(n))
	}
	for n := 1; n <= 36; n++ {
		if red[n] {
			add("red", n)
		} else {
			add("black", n)
		}
		if n%2 == 1 {
			add("odd", n)
		} else {
			add("even", n)
		}
		if n <= 18 {
			add("low", n)
		} else {
			add("high", n)
		}
		add(fmt.Sprintf("dozen-%d", (n-1)/12+1), n)
		add(fmt.Sprintf("column-%d", (n-1)%3+1), n)
	}
	return groups
}

type catalogueFile struct {
	Markets []marketEntry `toml:"market"`
}

type marketEntry struct {
	ID               string                 `toml:"id"`
	Name             string                 `toml:"name"`
	Game             models.Game            `toml:"game"`
	Domain           models.CandidateDomain `toml:"domain"`
	CoverGroups      map[string][]string    `toml:"cover_groups"`
	HarufCovers      bool                   `toml:"haruf_covers"`
	RouletteCovers   bool                   `toml:"roulette_covers"`
	PayoutMultiplier decimal.Decimal        `toml:"payout_multiplier"`
	MinStake         decimal.Decimal        `toml:"min_stake"`
	BettingSeconds   int                    `toml:"betting_seconds"`
	ResultsSeconds   int                    `toml:"results_seconds"`
	ResolutionMode   models.ResolutionMode  `toml:"resolution_mode"`
	OpenAt           string                 `toml:"open_at"`
	CloseAt          string                 `toml:"close_at"`
	Timezone         string                 `toml:"timezone"`
	Disabled         bool                   `toml:"disabled"`
}

func (e marketEntry) toModel() models.Market {
	m := models.Market{
		ID:                     e.ID,
		Name:                   e.Name,
		Game:                   e.Game,
		Domain:                 e.Domain,
		CoverGroups:            models.CoverGroups{},
		PayoutMultiplier:       e.PayoutMultiplier,
		MinStake:               e.MinStake,
		BettingDurationSeconds: e.BettingSeconds,
		ResultsDurationSeconds: e.ResultsSeconds,
		ResolutionMode:         e.ResolutionMode,
		Timezone:               e.Timezone,
		IsActive:               !e.Disabled,
	}
	if m.ResolutionMode == "" {
		m.ResolutionMode = models.ResolutionAuto
	}
	if m.Timezone == "" {
		m.Timezone = "UTC"
	}
	if e.OpenAt != "" || e.CloseAt != "" {
		open, closing := e.OpenAt, e.CloseAt
		m.OpenAt, m.CloseAt = &open, &closing
	}

	switch {
	case e.HarufCovers:
		m.CoverGroups = harufCovers()
	case e.RouletteCovers:
		m.CoverGroups = rouletteCovers()
	}
	for name, members := range e.CoverGroups {
		m.CoverGroups[name] = members
	}
	return m
}

// LoadCatalogue reads a TOML catalogue of [[market]] tables and validates
// every entry.
func LoadCatalogue(path string) ([]models.Market, error) {
	var file catalogueFile
	if _, err := toml.DecodeFile(path, &file); err != nil {
		return nil, fmt.Errorf("failed to decode market catalogue: %w", err)
	}
	return buildCatalogue(file.Markets)
}

// ParseCatalogue is LoadCatalogue for an in-memory document.
func ParseCatalogue(data string) ([]models.Market, error) {
	var file catalogueFile
	if _, err := toml.Decode(data, &file); err != nil {
		return nil, fmt.Errorf("failed to decode market catalogue: %w", err)
	}
	return buildCatalogue(file.Markets)
}

func buildCatalogue(entries []marketEntry) ([]models.Market, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("market catalogue is empty")
	}

	seen := make(map[string]struct{}, len(entries))
	out := make([]models.Market, 0, len(entries))
	for _, e := range entries {
		for name, members := range e.CoverGroups {
			if !validator.IsSlug(name) || !validator.NoDuplicates(members) {
				return nil, fmt.Errorf("market %q cover group %q: %w", e.ID, name, models.ErrUnknownCoverGroup)
			}
		}
		m := e.toModel()
		if err := m.Validate(); err != nil {
			return nil, fmt.Errorf("market %q: %w", e.ID, err)
		}
		if _, dup := seen[m.ID]; dup {
			return nil, fmt.Errorf("market %q: %w", m.ID, models.ErrInvalidMarketID)
		}
		seen[m.ID] = struct{}{}
		out = append(out, m)
	}
	return out, nil
}
