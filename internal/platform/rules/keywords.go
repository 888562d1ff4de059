package rules

import (
	"regexp"

	"github.com/silvioiatech/umbra-accountant/internal/core/domain"
)

// categoryPatterns maps each deduction category to keyword patterns covering
// the four Swiss national languages plus English. Patterns are matched
// case-insensitively against the combined merchant text and description.
var categoryPatterns = map[string][]*regexp.Regexp{
	domain.CategoryProfessionalExpenses: compileAll(
		`office|büro|bureau|ufficio`,
		`computer|laptop|printer|drucker`,
		`software|lizenz|license|licence`,
		`fachbuch|manuel|manuale|technical book`,
		`berufs|professional|professionnel`,
		`arbeits|work|travail|lavoro`,
		`geschäft|business|affaires|affari`,
		`meeting|sitzung|réunion|riunione`,
		`conference|konferenz|conférence|conferenza`,
		`tools|werkzeug|outils|attrezzi`,
		`uniform|arbeitskleidung|vêtements de travail`,
	),
	domain.CategoryCommutePublic: compileAll(
		`\b(sbb|cff|ffs)\b`,
		`\bga\b|general.?abonnement|\babo\b`,
		`halbtax|demi.?tarif|half.?fare|mezzo`,
		`\böv\b|transports publics|trasporti pubblici`,
		`\b(bus|tram|metro|train|zug)\b`,
		`ticket|billet|biglietto|fahrkarte`,
		`monatskarte|monthly pass|carte mensuelle`,
		`tageskarte|day pass|carte journalière`,
		`\b(vbz|tpg|vbl)\b`,
		`postauto|car postal|autopostale`,
	),
	domain.CategoryCommuteCar: compileAll(
		`benzin|essence|benzina|gasoline|petrol`,
		`diesel|gasoil`,
		`parkplatz|parking|parcheggio`,
		`garage|tiefgarage|parking souterrain`,
		`maut|péage|pedaggio|toll`,
		`autobahn|highway|autoroute|autostrada`,
		`vignette|bollino`,
		`tankstelle`,
		`\b(esso|shell|bp|migrol|avia)\b`,
	),
	domain.CategoryMealsWork: compileAll(
		`arbeitsessen|business meal|repas d'affaires`,
		`kantine|cafeteria|mensa|cantine`,
		`mittagessen|lunch|déjeuner|pranzo`,
		`geschäftsessen|business dinner|dîner d'affaires`,
		`verpflegung|catering|restauration`,
	),
	domain.CategoryEducation: compileAll(
		`weiterbildung|formation|formazione|training`,
		`kurs|cours|corso|course`,
		`seminar|séminaire|seminario`,
		`workshop|atelier`,
		`studium|études|studi`,
		`universität|université|università|university`,
		`schule|école|scuola|school`,
		`diplom|diploma|diplôme`,
		`zertifikat|certificate|certificat|certificato`,
		`prüfung|\bexam\b|examen|esame`,
		`lehrbuch|textbook|libro di testo`,
		`edx|coursera|udemy|linkedin learning`,
	),
	domain.CategoryPillar3a: compileAll(
		`säule 3a|pilier 3a|pilastro 3a|pillar 3a`,
		`vorsorge|prévoyance|previdenza|pension`,
		`3a.?(konto|account|compte|conto)`,
		`freizügigkeit|vested benefits|libre passage`,
		`pensionskasse|caisse de pension|cassa pensioni`,
	),
	domain.CategoryInsuranceHealth: compileAll(
		`krankenkasse|assurance maladie|assicurazione malattia`,
		`grundversicherung|assurance de base|assicurazione di base`,
		`zusatzversicherung|assurance complémentaire`,
		`\b(css|swica|helsana|concordia|visana|sanitas)\b`,
	),
	domain.CategoryChildcare: compileAll(
		`kinderbetreuung|garde d'enfants|custodia bambini`,
		`kindergarten|école enfantine|scuola dell'infanzia`,
		`kita|crèche|asilo nido|daycare`,
		`hort|garderie|dopo scuola`,
		`babysitter|nounou|baby sitter`,
		`tagesmutter|maman de jour|mamma diurna`,
		`mittagstisch|table de midi|mensa scolastica`,
	),
	domain.CategoryDonations: compileAll(
		`spende|\bdon\b|donazione|donation`,
		`hilfswerk|entraide|beneficenza`,
		`charity|charité|carità`,
		`rotes kreuz|croix rouge|croce rossa`,
		`unicef|wwf|greenpeace|amnesty`,
		`kirche|église|chiesa|church`,
		`humanitarian|humanitaire|umanitario`,
	),
	domain.CategoryHomeOffice: compileAll(
		`home.?office|büro.*zuhause|bureau.*domicile`,
		`internet.*(home|privé|casa)`,
		`telefon.*geschäft|téléphone.*professionnel|telefono.*lavoro`,
		`strom.*büro|électricité.*bureau|elettricità.*ufficio`,
	),
	domain.CategoryMedicalExpenses: compileAll(
		`\barzt\b|médecin|\bmedico\b|doctor`,
		`hospital|spital|hôpital|ospedale`,
		`zahnarzt|dentiste|dentista|dental`,
		`apotheke|pharmacie|farmacia|pharmacy`,
		`medikament|médicament|medicamento|medication`,
		`behandlung|traitement|trattamento|treatment`,
		`therapie|thérapie|terapia|therapy`,
		`psycholog|psychiater|psicologo|psichiatra`,
		`brille|lunettes|occhiali|glasses`,
		`hörgerät|appareil auditif|apparecchio acustico`,
	),
	domain.CategoryNonDeductible: compileAll(
		`ferien|vacances|vacanze|vacation`,
		`urlaub|congé|ferie|holiday`,
		`freizeit|loisirs|tempo libero|leisure`,
		`kino|cinéma|cinema|movie`,
		`unterhaltung|divertissement|intrattenimento|entertainment`,
		`geschenk|cadeau|regalo|gift`,
		`kosmetik|cosmétique|cosmetico|cosmetics`,
		`schmuck|bijoux|gioielli|jewelry`,
		`hobby|passe-temps|passatempo`,
		`spielzeug|jouet|giocattolo|toy`,
	),
}

// deductionCategories is the closed set of known category codes.
var deductionCategories = map[string]bool{
	domain.CategoryProfessionalExpenses: true,
	domain.CategoryCommutePublic:        true,
	domain.CategoryCommuteCar:           true,
	domain.CategoryMealsWork:            true,
	domain.CategoryEducation:            true,
	domain.CategoryPillar3a:             true,
	domain.CategoryInsuranceHealth:      true,
	domain.CategoryChildcare:            true,
	domain.CategoryDonations:            true,
	domain.CategoryHomeOffice:           true,
	domain.CategoryMedicalExpenses:      true,
	domain.CategoryOtherDeductions:      true,
	domain.CategoryNonDeductible:        true,
}

// ValidDeductionCategory reports whether code names a known deduction category.
func ValidDeductionCategory(code string) bool {
	return deductionCategories[code]
}

func compileAll(patterns ...string) []*regexp.Regexp {
	compiled := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		compiled[i] = regexp.MustCompile(`(?i)` + p)
	}
	return compiled
}

// ClassifyText matches text against the keyword patterns of every category
// and returns the best-scoring one. Confidence grows with the share of a
// category's patterns that matched. Returns non_deductible with zero
// confidence when nothing matches.
func ClassifyText(text string) (string, float64) {
	bestCategory := domain.CategoryNonDeductible
	bestConfidence := 0.0

	for category, patterns := range categoryPatterns {
		matched := 0
		for _, p := range patterns {
			if p.MatchString(text) {
				matched++
			}
		}
		if matched == 0 {
			continue
		}
		confidence := float64(matched)/float64(len(patterns)) + 0.1
		if confidence > 1.0 {
			confidence = 1.0
		}
		if confidence > bestConfidence || (confidence == bestConfidence && category < bestCategory) {
			bestConfidence = confidence
			bestCategory = category
		}
	}
	return bestCategory, bestConfidence
}
