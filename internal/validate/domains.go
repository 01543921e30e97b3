package validate

import (
	"net/url"
	"strings"

	"github.com/ppiankov/veracity/internal/model"
)

// DomainClass is the category a URL's host falls into
type DomainClass string

const (
	DomainUnknown      DomainClass = "unknown"
	DomainScientific   DomainClass = "scientific"
	DomainGovernment   DomainClass = "government"
	DomainPressRelease DomainClass = "press_release"
	DomainVideo        DomainClass = "video"
)

var defaultScientificDomains = []string{
	"pubmed.ncbi.nlm.nih.gov", "ncbi.nlm.nih.gov", "doi.org", "nature.com",
	"sciencedirect.com", "springer.com", "link.springer.com", "wiley.com",
	"onlinelibrary.wiley.com", "thelancet.com", "nejm.org", "jamanetwork.com",
	"bmj.com", "plos.org", "journals.plos.org", "arxiv.org", "biorxiv.org",
	"medrxiv.org", "cochranelibrary.com", "cochrane.org", "frontiersin.org",
	"mdpi.com", "science.org", "cell.com", "academic.oup.com", "tandfonline.com",
	"sagepub.com", "scholar.google.com", "semanticscholar.org",
}

var defaultGovernmentDomains = []string{
	"who.int", "europa.eu", "un.org", "gov.uk", "nhs.uk", "canada.ca",
	"gc.ca", "gov.au", "govt.nz",
}

var defaultPressReleaseDomains = []string{
	"prnewswire.com", "businesswire.com", "globenewswire.com", "accesswire.com",
	"einpresswire.com", "prweb.com", "newswire.com", "openpr.com",
	"prlog.org", "newsfilecorp.com", "issuewire.com",
}

var defaultVideoDomains = []string{
	"youtube.com", "youtu.be", "vimeo.com", "rumble.com", "odysee.com",
}

// DomainClassifier classifies URLs by the kind of organization behind them
type DomainClassifier struct {
	scientific   map[string]bool
	government   map[string]bool
	pressRelease map[string]bool
	video        map[string]bool
}

// NewDomainClassifier creates a classifier from the default domain lists
// plus any configured additions
func NewDomainClassifier(cfg *model.GroupingConfig) *DomainClassifier {
	if cfg == nil {
		cfg = &model.DefaultConfig().Grouping
	}

	return &DomainClassifier{
		scientific:   domainSet(defaultScientificDomains, cfg.ScientificDomains),
		government:   domainSet(defaultGovernmentDomains, cfg.GovernmentDomains),
		pressRelease: domainSet(defaultPressReleaseDomains, cfg.PressReleaseDomains),
		video:        domainSet(defaultVideoDomains, nil),
	}
}

func domainSet(defaults, extra []string) map[string]bool {
	set := make(map[string]bool, len(defaults)+len(extra))
	for _, d := range defaults {
		set[strings.ToLower(d)] = true
	}
	for _, d := range extra {
		set[strings.ToLower(strings.TrimSpace(d))] = true
	}
	return set
}

// Classify classifies a URL. Precedence: video, scientific, government,
// press release. Scientific wins over government so that NIH-hosted
// journals (PubMed) stay scientific.
func (d *DomainClassifier) Classify(rawURL string) DomainClass {
	host := Host(rawURL)
	if host == "" {
		return DomainUnknown
	}

	switch {
	case matchesDomain(host, d.video):
		return DomainVideo
	case d.IsScientific(host):
		return DomainScientific
	case d.IsGovernment(host):
		return DomainGovernment
	case matchesDomain(host, d.pressRelease):
		return DomainPressRelease
	default:
		return DomainUnknown
	}
}

// IsScientific reports whether host is an academic or scholarly domain
func (d *DomainClassifier) IsScientific(host string) bool {
	if matchesDomain(host, d.scientific) {
		return true
	}
	// Academic TLDs
	return strings.HasSuffix(host, ".edu") || strings.HasSuffix(host, ".ac.uk") ||
		strings.Contains(host, ".edu.") || strings.Contains(host, ".ac.")
}

// IsGovernment reports whether host is an official government or
// intergovernmental domain
func (d *DomainClassifier) IsGovernment(host string) bool {
	if matchesDomain(host, d.government) {
		return true
	}
	return strings.HasSuffix(host, ".gov") || strings.HasSuffix(host, ".mil") ||
		strings.Contains(host, ".gov.")
}

// matchesDomain checks the host and each parent domain against the set
func matchesDomain(host string, set map[string]bool) bool {
	for domain := range set {
		if host == domain || strings.HasSuffix(host, "."+domain) {
			return true
		}
	}
	return false
}

// Host extracts the lowercased host without port or leading "www."
func Host(rawURL string) string {
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return ""
	}
	host := strings.ToLower(parsed.Hostname())
	return strings.TrimPrefix(host, "www.")
}
