// =============================================================================
// Campaign Insights - Canonical Fields and Header Variants
// =============================================================================
//
// Every supported export layout is described here: each canonical field lists
// the header spellings seen in Spanish, English, French and German exports and
// in the Meta/Facebook, Google Ads, LinkedIn, TikTok and X conventions.
//
// These tables are the de facto contract for which CSV layouts are supported.
// Extend them (or add variants through configuration or an XLSX header
// template); do not remove entries.
//
// =============================================================================

package headermap

import (
	"strings"

	"github.com/ginjaninja78/campaign-insights/internal/textnorm"
)

// Field is a platform-agnostic column name.
type Field string

// Canonical fields.
const (
	FieldPlatform         Field = "platform"
	FieldCampaignName     Field = "campaign_name"
	FieldAdSetName        Field = "ad_set_name"
	FieldDate             Field = "date"
	FieldStatus           Field = "status"
	FieldImpressions      Field = "impressions"
	FieldClicks           Field = "clicks"
	FieldLinkClicks       Field = "link_clicks"
	FieldConversions      Field = "conversions"
	FieldCost             Field = "cost"
	FieldAmountSpentLocal Field = "amount_spent_local"
	FieldRevenue          Field = "revenue"
	FieldCTR              Field = "ctr"
	FieldCPC              Field = "cpc"
	FieldCPM              Field = "cpm"
	FieldROI              Field = "roi"
)

// Fields lists every canonical field in matching priority order. Specific
// fields come before the generic ones they overlap with ("link clicks" before
// "clicks", "amount spent" and "cost per click" before "cost") so that a
// column is claimed by the most precise field first.
var Fields = []Field{
	FieldPlatform,
	FieldCampaignName,
	FieldAdSetName,
	FieldDate,
	FieldStatus,
	FieldLinkClicks,
	FieldAmountSpentLocal,
	FieldCTR,
	FieldCPC,
	FieldCPM,
	FieldROI,
	FieldImpressions,
	FieldClicks,
	FieldConversions,
	FieldRevenue,
	FieldCost,
}

// ParseField resolves a field name as written in configuration files.
func ParseField(name string) (Field, bool) {
	key := strings.ReplaceAll(textnorm.Key(name), " ", "_")
	for _, f := range Fields {
		if string(f) == key {
			return f, true
		}
	}
	// Spanish-locale Meta exports label local spend in EUR.
	if key == "amount_spent_eur" {
		return FieldAmountSpentLocal, true
	}
	return "", false
}

// Language tags for header variants. Neutral variants ("ctr", "cpc") carry
// no language.
const (
	LangNeutral = ""
	LangEnglish = "en"
	LangSpanish = "es"
	LangFrench  = "fr"
	LangGerman  = "de"
)

// languages lists tags in the order used to break ties.
var languages = []string{LangEnglish, LangSpanish, LangFrench, LangGerman}

type variantGroup struct {
	lang     string
	variants []string
}

// defaultVariants holds the built-in header spellings per field.
var defaultVariants = map[Field][]variantGroup{
	FieldPlatform: {
		{LangEnglish, []string{"platform", "source", "channel", "media source", "network", "publisher platform"}},
		{LangSpanish, []string{"plataforma", "red", "red social", "origen", "canal", "fuente", "medio"}},
		{LangFrench, []string{"plateforme", "réseau", "canal"}},
		{LangGerman, []string{"plattform", "kanal", "quelle", "netzwerk"}},
	},
	FieldCampaignName: {
		{LangEnglish, []string{"campaign", "campaign_name", "campaign name"}},
		{LangSpanish, []string{"campaña", "nombre_campaña", "nombre campaña", "nombre de campaña", "nombre de la campaña"}},
		{LangFrench, []string{"campagne", "nom de la campagne", "nom campagne"}},
		{LangGerman, []string{"kampagne", "kampagnenname", "name der kampagne"}},
	},
	FieldAdSetName: {
		{LangEnglish, []string{"adset", "adset_name", "ad set", "ad set name", "ad_set_name", "ad group", "ad group name"}},
		{LangSpanish, []string{"conjunto de anuncios", "nombre del conjunto", "nombre del conjunto de anuncios", "grupo de anuncios"}},
		{LangFrench, []string{"ensemble de publicités", "nom de l'ensemble de publicités", "groupe d'annonces"}},
		{LangGerman, []string{"anzeigengruppe", "anzeigengruppenname", "name der anzeigengruppe"}},
	},
	FieldDate: {
		{LangEnglish, []string{"date", "day", "month", "week", "reporting_start", "reporting starts", "reporting_end", "reporting ends", "start date", "period"}},
		{LangSpanish, []string{"fecha", "día", "mes", "semana", "fecha_inicio", "fecha inicio", "inicio del informe", "fin del informe"}},
		{LangFrench, []string{"jour", "mois", "semaine", "début des rapports", "fin des rapports"}},
		{LangGerman, []string{"datum", "monat", "woche", "berichtsbeginn", "berichtsende"}},
	},
	FieldStatus: {
		{LangEnglish, []string{"status", "campaign status", "delivery", "campaign delivery", "ad set delivery", "state"}},
		{LangSpanish, []string{"estado", "entrega", "estado de la entrega", "estado de la campaña"}},
		{LangFrench, []string{"statut", "état", "diffusion"}},
		{LangGerman, []string{"auslieferung", "kampagnenstatus"}},
	},
	FieldImpressions: {
		{LangEnglish, []string{"impressions", "impression", "impr", "impr.", "imprs", "imps", "views", "total impressions"}},
		{LangSpanish, []string{"impresiones", "impres", "vistas", "visualizaciones"}},
		{LangFrench, []string{"affichages", "vues"}},
		{LangGerman, []string{"impressionen", "einblendungen", "aufrufe"}},
	},
	FieldClicks: {
		{LangEnglish, []string{"clicks", "click", "clicks (all)", "all clicks", "all_clicks", "click_total", "total clicks"}},
		{LangSpanish, []string{"clics", "clic", "cliques", "pulsaciones", "clics (todos)"}},
		{LangFrench, []string{"clics (tous)"}},
		{LangGerman, []string{"klicks", "klick", "klicks (alle)"}},
	},
	FieldLinkClicks: {
		{LangEnglish, []string{"link clicks", "link_clicks", "outbound clicks", "outbound_clicks", "inline link clicks", "clicks on link"}},
		{LangSpanish, []string{"clics en el enlace", "clics en enlace", "clics salientes"}},
		{LangFrench, []string{"clics sur un lien", "clics sur le lien"}},
		{LangGerman, []string{"link-klicks", "linkklicks", "klicks auf link"}},
	},
	FieldConversions: {
		{LangEnglish, []string{"conversions", "conversion", "conv", "conv.", "convs", "converts", "results", "outcomes", "purchases", "leads", "total conversions"}},
		{LangSpanish, []string{"conversiones", "resultados", "compras"}},
		{LangFrench, []string{"résultats", "achats"}},
		{LangGerman, []string{"konversionen", "ergebnisse", "käufe"}},
	},
	FieldCost: {
		{LangEnglish, []string{"cost", "spend", "spent", "total spent", "budget"}},
		{LangSpanish, []string{"costo", "coste", "gasto", "gastos", "inversión", "inversion", "presupuesto"}},
		{LangFrench, []string{"coût", "dépenses", "dépense"}},
		{LangGerman, []string{"kosten", "ausgaben"}},
	},
	FieldAmountSpentLocal: {
		{LangEnglish, []string{"amount_spent", "amount spent", "money_spent", "money spent", "amount spent (eur)", "amount spent (usd)"}},
		{LangSpanish, []string{"importe_gastado", "importe gastado", "importe gastado (eur)"}},
		{LangFrench, []string{"montant dépensé", "montant dépensé (eur)"}},
		{LangGerman, []string{"ausgegebener betrag", "ausgegebener betrag (eur)"}},
	},
	FieldRevenue: {
		{LangEnglish, []string{"revenue", "income", "purchases_value", "purchases value", "purchase value", "purchases conversion value", "conversion value", "conv. value", "total conversion value", "total purchase value", "sales"}},
		{LangSpanish, []string{"ingresos", "ingreso", "ganancia", "ganancias", "valor de conversión", "valor de compras", "ventas"}},
		{LangFrench, []string{"revenus", "revenu", "chiffre d'affaires", "valeur de conversion", "ventes"}},
		{LangGerman, []string{"umsatz", "einnahmen", "erlös", "conversion-wert", "conversionwert"}},
	},
	FieldCTR: {
		{LangNeutral, []string{"ctr", "ctr (all)", "ctr (link click-through rate)"}},
		{LangEnglish, []string{"click_through_rate", "click through rate", "click-through rate", "average ctr"}},
		{LangSpanish, []string{"tasa_clics", "tasa de clics", "ratio_clicks", "porcentaje de clics"}},
		{LangFrench, []string{"taux de clics", "taux de clic"}},
		{LangGerman, []string{"klickrate"}},
	},
	FieldCPC: {
		{LangNeutral, []string{"cpc", "avg. cpc", "cpc (all)", "cpc (cost per link click)"}},
		{LangEnglish, []string{"cost_per_click", "cost per click", "average cpc"}},
		{LangSpanish, []string{"coste_por_clic", "coste por clic", "costo_por_clic", "costo por clic"}},
		{LangFrench, []string{"coût par clic"}},
		{LangGerman, []string{"kosten pro klick"}},
	},
	FieldCPM: {
		{LangNeutral, []string{"cpm", "avg. cpm", "cpm (cost per 1,000 impressions)"}},
		{LangEnglish, []string{"cost_per_1000_impression", "cost per 1000 impressions", "cost per thousand", "average cpm"}},
		{LangSpanish, []string{"coste_por_mil", "coste por mil", "costo_por_mil", "costo por mil", "coste por mil impresiones"}},
		{LangFrench, []string{"coût pour mille", "coût par mille"}},
		{LangGerman, []string{"tausend-kontakt-preis", "kosten pro tausend"}},
	},
	FieldROI: {
		{LangNeutral, []string{"roi", "roi (%)"}},
		{LangEnglish, []string{"return on investment", "return_on_investment"}},
		{LangSpanish, []string{"retorno de la inversión", "retorno de inversión", "rentabilidad"}},
		{LangFrench, []string{"retour sur investissement"}},
		{LangGerman, []string{"kapitalrendite"}},
	},
}

// ratioMarkers flag headers that describe a rate ("cost per result",
// "Cost / conv.", "Avg. cost"). Generic total fields never match them
// through fuzzy strategies.
var ratioMarkers = map[string]bool{
	"per": true, "por": true, "pro": true, "par": true, "pour": true, "je": true,
	"avg": true, "average": true, "promedio": true, "moyen": true, "moyenne": true,
	"durchschnittlich": true, "durchschn": true, "rate": true, "ratio": true,
	"tasa": true, "taux": true, "roas": true,
}

func isRatioHeader(raw string, tokens []string) bool {
	if strings.Contains(raw, "/") {
		return true
	}
	for _, t := range tokens {
		if ratioMarkers[t] {
			return true
		}
	}
	return false
}
