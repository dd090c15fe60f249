package rubric

import (
	_ "embed"
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"credence/internal/config"
	"credence/internal/evidence"
	"credence/internal/registry"
	"credence/internal/source"
)

//go:embed keywords.yaml
var keywordsYAML []byte

type patternConfig struct {
	Independence     string `yaml:"independence_pattern"`
	PrimaryAnchor    string `yaml:"primary_anchor_pattern"`
	Attribution      string `yaml:"attribution_pattern"`
	Method           string `yaml:"method_pattern"`
	Standards        string `yaml:"standards_pattern"`
	InstActor        string `yaml:"institutional_actor_pattern"`
	InstOutcome      string `yaml:"institutional_outcome_pattern"`
	InstAny          string `yaml:"institutional_any_pattern"`
	Corrections      string `yaml:"corrections_pattern"`
	Hedging          string `yaml:"hedging_pattern"`
	Absolutist       string `yaml:"absolutist_pattern"`
	Specialized      string `yaml:"specialized_pattern"`
	Buzzword         string `yaml:"buzzword_pattern"`
	Ownership        string `yaml:"ownership_pattern"`
	AnchorDate       string `yaml:"anchor_date_pattern"`
	AnchorLocation   string `yaml:"anchor_location_pattern"`
	AnchorQuantity   string `yaml:"anchor_quantity_pattern"`
	AnchorPerson     string `yaml:"anchor_person_pattern"`
}

type patterns struct {
	independence *regexp.Regexp
	primary      *regexp.Regexp
	attribution  *regexp.Regexp
	method       *regexp.Regexp
	standards    *regexp.Regexp
	instActor    *regexp.Regexp
	instOutcome  *regexp.Regexp
	instAny      *regexp.Regexp
	corrections  *regexp.Regexp
	hedging      *regexp.Regexp
	absolutist   *regexp.Regexp
	specialized  *regexp.Regexp
	buzzword     *regexp.Regexp
	ownership    *regexp.Regexp
	anchors      map[string]*regexp.Regexp // class name -> pattern, original-case text
}

func loadPatterns() patterns {
	var pc patternConfig
	if err := yaml.Unmarshal(keywordsYAML, &pc); err != nil {
		panic(fmt.Sprintf("load rubric keywords.yaml: %v", err))
	}
	mk := regexp.MustCompile
	return patterns{
		independence: mk(pc.Independence),
		primary:      mk(pc.PrimaryAnchor),
		attribution:  mk(pc.Attribution),
		method:       mk(pc.Method),
		standards:    mk(pc.Standards),
		instActor:    mk(pc.InstActor),
		instOutcome:  mk(pc.InstOutcome),
		instAny:      mk(pc.InstAny),
		corrections:  mk(pc.Corrections),
		hedging:      mk(pc.Hedging),
		absolutist:   mk(pc.Absolutist),
		specialized:  mk(pc.Specialized),
		buzzword:     mk(pc.Buzzword),
		ownership:    mk(pc.Ownership),
		anchors: map[string]*regexp.Regexp{
			"dates":        mk(pc.AnchorDate),
			"locations":    mk(pc.AnchorLocation),
			"quantities":   mk(pc.AnchorQuantity),
			"named actors": mk(pc.AnchorPerson),
		},
	}
}

// Input is everything one heuristic scoring pass sees.
type Input struct {
	Main     *source.FetchedDocument
	Aux      []*source.FetchedDocument
	AllMains []*source.FetchedDocument // every main document in the batch, this one included
	Relation source.Relation
	PageType source.PageType
}

// Scorer computes the ten criterion scores purely from retrieved text,
// the injected registry, and the relation. It never errors: criteria
// without evidence come back not-assessed.
type Scorer struct {
	reg    *registry.Registry
	policy config.Policy
	pat    patterns
}

func NewScorer(reg *registry.Registry, policy config.Policy) *Scorer {
	return &Scorer{reg: reg, policy: policy, pat: loadPatterns()}
}

// segments holds the page texts quotes may be extracted from, one entry
// per page. Quote windows never cross a segment boundary: a window that
// spliced the title, site name, or an adjacent page into a "verbatim"
// quote would not be recoverable from the evidence pack.
type segments struct {
	main string
	aux  []string
}

func (seg segments) auxOnly() segments { return segments{aux: seg.aux} }

// Score produces the full criterion set.
func (s *Scorer) Score(in Input) Set {
	domain := strings.ToLower(in.Main.Domain)
	entry := s.reg.Lookup(domain)

	// Clip each page exactly the way the evidence pack does, so every
	// extracted quote is recoverable from the pack.
	seg := segments{main: evidence.Clip(in.Main.Text, s.policy.MainClipChars)}
	for _, p := range in.Aux {
		if p.Text != "" {
			seg.aux = append(seg.aux, evidence.Clip(p.Text, s.policy.AuxClipChars))
		}
	}
	auxText := strings.Join(seg.aux, "\n")

	// Pattern MATCHING may look at title and site name too; quote
	// EXTRACTION is restricted to the page segments above.
	low := strings.ToLower(strings.Join([]string{in.Main.Title, in.Main.SiteName, seg.main, auxText}, "\n"))

	set := Set{}
	set[OwnershipControl] = s.scoreOwnership(domain, entry, seg, low)
	set[ConflictOfInterest] = scoreConflict(in.Relation)
	set[EvidenceStrength] = s.scoreEvidence(in.Main, seg, low)
	set[MethodTransparency] = s.scoreMethod(seg, auxText, low)
	set[Specificity] = s.scoreSpecificity(seg.main, in.PageType)
	set[Corroboration] = s.scoreCorroboration(in.Main, in.AllMains, domain)
	set[LegalConfirmation] = s.scoreLegal(seg, low)
	set[TrackRecord] = s.scoreTrackRecord(entry, in.Aux, seg, low)
	set[Nuance] = s.scoreNuance(seg, low)
	set[DomainCompetence] = s.scoreCompetence(seg, low)
	return set
}

// quote extracts up to two windows, scanning the main segment first and
// the aux segments after, each in isolation.
func (s *Scorer) quote(seg segments, re *regexp.Regexp) []string {
	out := snippets(seg.main, re, 2, s.policy.QuoteWindow, s.policy.QuoteMaxChars)
	for _, a := range seg.aux {
		if len(out) >= 2 {
			break
		}
		out = append(out, snippets(a, re, 2-len(out), s.policy.QuoteWindow, s.policy.QuoteMaxChars)...)
	}
	return out
}

// C1: default to not-assessed rather than a middle score. Only hard
// control signals (registry, official suffix) or explicit independence
// language move it.
func (s *Scorer) scoreOwnership(domain string, entry registry.Entry, seg segments, low string) Criterion {
	if entry.OfficialControl() || registry.OfficialDomain(domain) {
		return Assessed(0, "Signals indicate state/party/official control.", nil)
	}
	if entry.Independent || s.pat.independence.MatchString(low) {
		q := s.quote(seg.auxOnly(), s.pat.independence)
		if len(q) == 0 {
			q = s.quote(seg, s.pat.independence)
		}
		return Assessed(2, "Signals indicate editorial independence.", q)
	}
	return NotAssessed("Not assessed (insufficient ownership/control evidence in fetched pages).")
}

// C2 is a pure function of the relation; unknown is treated as
// potentially interested, not neutral.
func scoreConflict(rel source.Relation) Criterion {
	switch rel {
	case source.RelationSelf:
		return Assessed(0, "Self-interest context (publisher has a direct stake in the claim).", nil)
	case source.RelationAdversary:
		return Assessed(1, "Adversarial context; possible incentives against the subject.", nil)
	case source.RelationThirdParty, source.RelationNonPoliticalFact:
		return Assessed(2, "Third-party or primary-record context; limited direct stake.", nil)
	default:
		return Assessed(1, "Relation unknown; treated as potentially interested.", nil)
	}
}

// C3: primary-document format or primary-anchor terms beat secondary
// attribution; bare assertion scores zero.
func (s *Scorer) scoreEvidence(main *source.FetchedDocument, seg segments, low string) Criterion {
	if main.FetchStatus == source.FetchPDF {
		return Assessed(2, "Primary evidence format (PDF) extracted.", s.quote(segments{main: seg.main}, s.pat.primary))
	}
	if s.pat.primary.MatchString(low) {
		return Assessed(2, "Primary-evidence indicators present (filing/judgment/transcript/dataset).", s.quote(seg, s.pat.primary))
	}
	if s.pat.attribution.MatchString(low) {
		return Assessed(1, "Secondary reporting with attribution detected.", s.quote(seg, s.pat.attribution))
	}
	return Assessed(0, "No clear evidence trail detected in fetched text.", nil)
}

// C4: item-level method language beats publisher-level standards pages.
func (s *Scorer) scoreMethod(seg segments, auxText, low string) Criterion {
	if s.pat.method.MatchString(low) {
		return Assessed(2, "Method/verification language present.", s.quote(seg, s.pat.method))
	}
	if s.pat.standards.MatchString(strings.ToLower(auxText)) {
		return Assessed(1, "Standards/policy pages found; item-level method not explicit.", s.quote(seg.auxOnly(), s.pat.standards))
	}
	return Assessed(0, "No method/verification described in fetched pages.", nil)
}

// C5: requires at least two DISTINCT anchor classes (dates, locations,
// quantities, named actors), not one class repeated. Listing pages are
// excluded, not penalized: they are not the cited content.
func (s *Scorer) scoreSpecificity(mainText string, pageType source.PageType) Criterion {
	if pageType == source.PageListing {
		return NotAssessed("Not assessed (listing/section page; may not be the cited article).")
	}
	body := strings.TrimSpace(mainText)
	if len(body) < s.policy.FailedTextFloor {
		return Assessed(0, "Too little extracted text for auditability.", nil)
	}

	var classes []string
	var quotes []string
	for _, name := range []string{"dates", "locations", "quantities", "named actors"} {
		re := s.pat.anchors[name]
		hits := re.FindAllString(body, 3)
		if len(hits) >= 2 || (len(hits) >= 1 && name != "dates") {
			classes = append(classes, fmt.Sprintf("%s (%d found)", name, len(hits)))
			if len(quotes) < 2 {
				quotes = append(quotes, s.quote(segments{main: body}, re)...)
			}
		}
	}
	if len(quotes) > 2 {
		quotes = quotes[:2]
	}

	switch {
	case len(classes) >= 2:
		return Assessed(2, "Traceable anchors present: "+strings.Join(classes, "; "), quotes)
	case len(classes) == 1:
		return Assessed(1, "Limited anchors: "+classes[0], quotes)
	default:
		return Assessed(0, "No who/when/where/how-much anchors found.", nil)
	}
}

// C6: only assessable with >= 2 sources in the batch. Overlap is counted
// against documents on a different registrable domain only.
func (s *Scorer) scoreCorroboration(main *source.FetchedDocument, allMains []*source.FetchedDocument, domain string) Criterion {
	if len(allMains) < 2 {
		return NotAssessed("Not assessed (single-source batch; corroboration needs at least two sources).")
	}
	my := featureSet(main.Text)
	if len(my) < s.policy.CorroborationMinFeatures {
		return Assessed(0, "Too few extractable features to corroborate against the set.", nil)
	}
	matches := 0
	for _, other := range allMains {
		if other.Resolved() == main.Resolved() {
			continue
		}
		if strings.ToLower(other.Domain) == domain {
			continue
		}
		if overlap(my, featureSet(other.Text)) >= s.policy.CorroborationOverlap {
			matches++
		}
	}
	switch {
	case matches >= 2:
		return Assessed(2, "Corroborated by multiple independent sources in the set.", nil)
	case matches == 1:
		return Assessed(1, "Corroborated by one independent source in the set.", nil)
	default:
		return Assessed(0, "No corroboration detected within the provided set.", nil)
	}
}

// C7: top score needs an institutional actor AND an outcome term; either
// alone is partial credit.
func (s *Scorer) scoreLegal(seg segments, low string) Criterion {
	actor := s.pat.instActor.MatchString(low)
	outcome := s.pat.instOutcome.MatchString(low)
	switch {
	case actor && outcome:
		return Assessed(2, "Institutional actor and outcome language both present.", s.quote(seg, s.pat.instOutcome))
	case s.pat.instAny.MatchString(low):
		return Assessed(1, "Institutional process referenced; confirmation may be partial.", s.quote(seg, s.pat.instAny))
	default:
		return Assessed(0, "No legal/institutional confirmation signals detected.", nil)
	}
}

// C8: needs direct corrections evidence or a registry misinfo flag;
// otherwise not assessed.
func (s *Scorer) scoreTrackRecord(entry registry.Entry, aux []*source.FetchedDocument, seg segments, low string) Criterion {
	if entry.FrequentMisinfo || entry.KnownBad {
		return Assessed(0, "Registry signals frequent misinformation or absent correction behavior.", nil)
	}
	hasCorrections := s.pat.corrections.MatchString(low)
	for _, p := range aux {
		u := strings.ToLower(p.Resolved())
		if strings.Contains(u, "correction") || strings.Contains(u, "retraction") {
			hasCorrections = true
		}
	}
	if hasCorrections {
		q := s.quote(seg.auxOnly(), s.pat.corrections)
		if len(q) == 0 {
			q = s.quote(seg, s.pat.corrections)
		}
		return Assessed(2, "Corrections/retractions behavior indicated.", q)
	}
	return NotAssessed("Not assessed (insufficient corrections/track-record evidence in fetched pages).")
}

// C9: ratio of hedging/attribution terms to absolutist terms.
func (s *Scorer) scoreNuance(seg segments, low string) Criterion {
	hedge := len(s.pat.hedging.FindAllString(low, -1))
	absolutes := len(s.pat.absolutist.FindAllString(low, -1))
	switch {
	case hedge >= 5 && absolutes <= 1:
		return Assessed(2, "Attribution and hedging suggest uncertainty is handled.", s.quote(seg, s.pat.hedging))
	case absolutes >= 4 && hedge == 0:
		return Assessed(0, "Absolutist framing with no hedging.", s.quote(seg, s.pat.absolutist))
	default:
		return Assessed(1, "Some nuance/uncertainty handling; may be incomplete.", s.quote(seg, s.pat.hedging))
	}
}

// C10: specialized vocabulary needs method language behind it;
// buzzword-heavy text without method scores zero.
func (s *Scorer) scoreCompetence(seg segments, low string) Criterion {
	specialized := s.pat.specialized.MatchString(low)
	method := s.pat.method.MatchString(low)
	switch {
	case specialized && method:
		return Assessed(2, "Specialized domain signals with method language present.", s.quote(seg, s.pat.specialized))
	case s.pat.buzzword.MatchString(low) && !method:
		return Assessed(0, "Buzzword-heavy text with no method/evidence signals.", s.quote(seg, s.pat.buzzword))
	default:
		return Assessed(1, "Generalist coverage / unclear domain depth.", nil)
	}
}
