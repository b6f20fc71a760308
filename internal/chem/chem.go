// Package chem maps free-text chemical item names to functional categories.
//
// The source data mixes chemical products, whole mud systems, water types,
// operational loss/gain entries, and Spanish-language equivalents. The
// pattern table is ordered: specific chemicals first, then mud systems,
// water, operational entries, and finally catch-all buckets. First match
// wins.
package chem

import (
	"regexp"
	"strings"
	"sync"
)

// DefaultCategory is returned for empty, junk, or unmatched item names.
const DefaultCategory = "Generic/Unknown"

type pattern struct {
	category string
	re       *regexp.Regexp
}

var categoryPatterns = []pattern{
	// Specific chemical products.
	{"Weighting Agent", regexp.MustCompile(`(?i)barit|hematit|calcium\s*carb|barita|peso|marble|ite\b.*ite` +
		`|calcium[\s._-]?chlor|CaCl\b|cacl2|chloride`)},
	{"Viscosifier", regexp.MustCompile(`(?i)gel\b|bentonit|polymer|xanthan|PAC[\s]|viscosi|goma|HEC\b` +
		`|hi[\s._-]?vis|hivis|high[\s._-]?vis|gelbenex|benex`)},
	{"Fluid Loss Control", regexp.MustCompile(`(?i)starch|CMC\b|filtro|almid|fluid[\s._-]?loss|resinex|resina`)},
	{"Thinner", regexp.MustCompile(`(?i)thinn|lignit|ligno|deflocc|adelgaz|dispersa|chrome[\s._-]?free`)},
	{"pH Control", regexp.MustCompile(`(?i)\blime\b|caustic|NaOH|soda[\s._-]?ash|\bcal\b|sosa|KOH\b`)},
	{"LCM", regexp.MustCompile(`(?i)mica|fiber|cellophan|walnut|LCM\b|perdida|seal|plug|cedar`)},
	{"Lubricant", regexp.MustCompile(`(?i)lubr|torque`)},
	{"Shale Inhibitor", regexp.MustCompile(`(?i)shale|inhibit|KCl\b|potassium|glycol|glycodrill`)},
	{"Biocide", regexp.MustCompile(`(?i)biocid|bactericid`)},
	{"Defoamer", regexp.MustCompile(`(?i)defoam|antifoam|antiespum`)},
	{"Surfactant", regexp.MustCompile(`(?i)surfact|wetting|deterg`)},
	{"Emulsifier", regexp.MustCompile(`(?i)emul|MUL[\s]`)},

	// Loss via solids-control equipment.
	{"SC Removal", regexp.MustCompile(`(?i)shaker|zaranda|centrifug|centerifug|mud[\s._-]?cleaner|desilter|desander` +
		`|dryer|secadora|lavador|solids[\s._-]?control|SCE\b|skimer` +
		`|settled[\s._-]?solid|cuttings|screen\b|solids[\s._-]?equip` +
		`|dewater|dewatter`)},

	{"Recovered Mud", regexp.MustCompile(`(?i)recup|recover|recuper|reciclado|reutilizad|lodo.+recup` +
		`|fluido[\s._-]?recup`)},

	// Loss downhole.
	{"Downhole Loss", regexp.MustCompile(`(?i)down[\s._-]?hol|left[\s._-]?in[\s._-]?hol|behind[\s._-]?casing` +
		`|formaci[oó]n|formation|lost[\s._-]?circ|seepage|ballooning|influx|influjo` +
		`|permeabilid|inyeccion|lost[\s._-]?on[\s._-]?cut|total[\s._-]?loss` +
		`|daily[\s._-]?loss|mud[\s._-]?lost|\blosses\b|hueco\b|debajo`)},

	// Loss at surface.
	{"Surface Loss", regexp.MustCompile(`(?i)evaporat|evaporac|surface\b|superficie|spill|derrame|dumped` +
		`|mud[\s._-]?dump|fluid[\s._-]?dump|water[\s._-]?dump` +
		`|clean[\s._-]?pit|pit[\s._-]?clean|limpieza|lavado|disposal` +
		`|dispoz|discard|waste|cellar|celler|rig[\s._-]?use` +
		`|filtrat?i[oó]n|filtraci[oó]n|filtracion|humectac`)},

	{"Cementing", regexp.MustCompile(`(?i)cement|cementac|lechada|tapon[\s._-]?c|spacer|plug[\s._-]?\d`)},

	{"Transfer", regexp.MustCompile(`(?i)transfer|trucking|transport|displace|desplaz\b` +
		`|recib|fluido[\s._-]?recib|lodo[\s._-]?transfer`)},

	{"Storage", regexp.MustCompile(`(?i)reserve\b|storage|almacen|frac[\s._-]?tank|frack[\s._-]?tank` +
		`|pit\b|pits\b|pileta|day[\s._-]?tank|settling[\s._-]?pit` +
		`|prev.*section|vol.*anterior|comienzo|active[\s._-]?vol` +
		`|active[\s._-]?sys|active[\s._-]?mud|A\s+re[sr]erva|lodo\s+rserva` +
		`|fluido[\s._-]?de[\s._-]?empaque|fluido[\s._-]?de[\s._-]?reserva` +
		`|frac[\s._-]?\d|tanque|tks\b|ganancia`)},

	{"Water", regexp.MustCompile(`(?i)\bwater\b|\bh2o\b|\bagua\b|fresh[\s._-]?w|salt[\s._-]?w|brine\b` +
		`|salmuera|drill[\s._-]?water|sea[\s._-]?water|cone[\s._-]?water` +
		`|recycl.*water|reciclat.*water|fesh[\s._-]?w`)},

	{"Base Fluid", regexp.MustCompile(`(?i)\bdiesel\b|\bdeisel\b|aceite|base[\s._-]?oil` +
		`|mineral[\s._-]?oil|distillat|escaid|eco[\s._-]?base|D[\s._-]?822\b` +
		`|invert\b|crude\b|MMO\b|synthetic\b`)},

	{"Mud System", regexp.MustCompile(`(?i)polytra[xk]|politra[xk]|traxx\b|spud[\s._-]?mud|kill[\s._-]?mud` +
		`|\bobm\b|\bsbm\b|\bsobm\b|\bwbm\b|upright|up[\s._-]?right` +
		`|premix|pre[\s._-]?mix|whole[\s._-]?mud|fresh[\s._-]?mud` +
		`|recycl.*mud|reciclat.*mud|rheliant|terraform|formadrill` +
		`|klashield|RDF\b|drill[\s._-]?in\b|drill[\s._-]?n\b|LSND\b` +
		`|PCS[\s._-]?mud|3rd[\s._-]?party|NOV\s+OBM|EOG|SLB|SOLO|Halliburton` +
		`|make[\s._-]?up[\s._-]?mud|sweep|PETROS|frac[\s._-]?mud` +
		`|lodo\b|weighted[\s._-]?mud|contaminad|\bmud\b`)},

	{"Operational", regexp.MustCompile(`(?i)trip|maniobra|connect|conect|circulat|casing\b|run.*casing` +
		`|ABO\b|adjust|correction|sensor|pump|booster|interphase` +
		`|contaminat|returned|built|SCE[\s._-]?return` +
		`|flow[\s._-]?back|pildora|otros?\b|otras?\b|other|misc` +
		`|lineas|líneas`)},

	// Spanish catch-all.
	{"Chemicals", regexp.MustCompile(`(?i)quim|quím|product|aditiv|prod[\s._-]?q|vol[\s._-]?q|vol\.?[\s._-]?prod` +
		`|carga|incorpor|ECS\b|ROC\b|AES\b|DEA\b|Sprayberry` +
		`|espaciador|baches`)},
}

// baseFluidOil matches a bare "oil" mention. RE2 has no negative lookahead,
// so the "oil ... field" exclusion is a code guard in classify.
var baseFluidOil = regexp.MustCompile(`(?i)\boil\b`)

var cache sync.Map // item name -> category

// Categorize maps a single item name to its category. Pure and total:
// empty, junk, and unmatched names return DefaultCategory.
func Categorize(itemName string) string {
	name := strings.TrimSpace(itemName)
	if name == "" {
		return DefaultCategory
	}

	if v, ok := cache.Load(name); ok {
		return v.(string)
	}

	category := classify(name)
	cache.Store(name, category)
	return category
}

func classify(name string) string {
	// Purely numeric or single-character junk entries.
	if len(name) <= 2 || isNumeric(name) {
		return DefaultCategory
	}
	for _, p := range categoryPatterns {
		if p.re.MatchString(name) {
			return p.category
		}
		if p.category == "Base Fluid" && baseFluidOil.MatchString(name) {
			if loc := baseFluidOil.FindStringIndex(name); !strings.Contains(strings.ToLower(name[loc[1]:]), "field") {
				return p.category
			}
		}
	}
	return DefaultCategory
}

func isNumeric(s string) bool {
	stripped := strings.NewReplacer(".", "", "-", "").Replace(s)
	if stripped == "" {
		return false
	}
	for _, r := range stripped {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
