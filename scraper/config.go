package scraper

// Default site markup, matching TechCrunch daily archive and article pages.
const (
	DefaultSiteRoot            = "https://techcrunch.com/"
	DefaultHeadlineAttr        = "data-omni-sm"
	DefaultHeadlineMarker      = "gbl_river_headline"
	DefaultTitleSelector       = "h1.alpha.tweet-title"
	DefaultCompanyNameSelector = "a.cb-card-title-link"
	DefaultWebsiteLabelElement = "strong"
	DefaultWebsiteLabel        = "Website"
)

// SiteConfig defines where a site's daily listings live and how to read
// them.
type SiteConfig struct {
	Root          string        `yaml:"root" json:"root"`
	ListConfig    ListConfig    `yaml:"list" json:"list_config"`
	ArticleConfig ArticleConfig `yaml:"article" json:"article_config"`
}

// ListConfig defines how to find article links on a daily listing page.
type ListConfig struct {
	// Attribute carried by headline links in the main content river.
	HeadlineAttr string `yaml:"headline_attr" json:"headline_attr"`
	// Prefix the attribute value must start with.
	HeadlineMarker string `yaml:"headline_marker" json:"headline_marker"`
	MaxPages       int    `yaml:"max_pages" json:"max_pages"` // Default: 1
}

// ArticleConfig defines how to extract the title and company card from an
// article page.
type ArticleConfig struct {
	TitleSelector       string `yaml:"title_selector" json:"title_selector"`
	CompanyNameSelector string `yaml:"company_name_selector" json:"company_name_selector"`
	WebsiteLabelElement string `yaml:"website_label_element" json:"website_label_element"`
	WebsiteLabel        string `yaml:"website_label" json:"website_label"`
}

// NewListConfig creates a new list configuration with default values.
func NewListConfig(headlineMarker string) *ListConfig {
	return &ListConfig{
		HeadlineAttr:   DefaultHeadlineAttr,
		HeadlineMarker: headlineMarker,
		MaxPages:       1,
	}
}

// DefaultSiteConfig returns the configuration for TechCrunch.
func DefaultSiteConfig() SiteConfig {
	return SiteConfig{
		Root:       DefaultSiteRoot,
		ListConfig: *NewListConfig(DefaultHeadlineMarker),
		ArticleConfig: ArticleConfig{
			TitleSelector:       DefaultTitleSelector,
			CompanyNameSelector: DefaultCompanyNameSelector,
			WebsiteLabelElement: DefaultWebsiteLabelElement,
			WebsiteLabel:        DefaultWebsiteLabel,
		},
	}
}

// Merge returns c with every non-empty field of override applied.
func (c SiteConfig) Merge(override SiteConfig) SiteConfig {
	if override.Root != "" {
		c.Root = override.Root
	}
	if override.ListConfig.HeadlineAttr != "" {
		c.ListConfig.HeadlineAttr = override.ListConfig.HeadlineAttr
	}
	if override.ListConfig.HeadlineMarker != "" {
		c.ListConfig.HeadlineMarker = override.ListConfig.HeadlineMarker
	}
	if override.ListConfig.MaxPages > 0 {
		c.ListConfig.MaxPages = override.ListConfig.MaxPages
	}
	if override.ArticleConfig.TitleSelector != "" {
		c.ArticleConfig.TitleSelector = override.ArticleConfig.TitleSelector
	}
	if override.ArticleConfig.CompanyNameSelector != "" {
		c.ArticleConfig.CompanyNameSelector = override.ArticleConfig.CompanyNameSelector
	}
	if override.ArticleConfig.WebsiteLabelElement != "" {
		c.ArticleConfig.WebsiteLabelElement = override.ArticleConfig.WebsiteLabelElement
	}
	if override.ArticleConfig.WebsiteLabel != "" {
		c.ArticleConfig.WebsiteLabel = override.ArticleConfig.WebsiteLabel
	}
	return c
}

// WithDefaults fills any empty field of c from DefaultSiteConfig.
func (c SiteConfig) WithDefaults() SiteConfig {
	return DefaultSiteConfig().Merge(c)
}
