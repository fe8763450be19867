package access

// Feature is a key looked up in the gating map.
type Feature string

const (
	FeatureAnalytics         Feature = "analytics"
	FeatureContentScheduler  Feature = "content_scheduler"
	FeatureSocialConnections Feature = "social_connections"
	FeatureAICalendar        Feature = "ai_calendar"
	FeatureViralScore        Feature = "viral_score"
	FeatureMonetization      Feature = "monetization"
	FeatureAdvancedAnalytics Feature = "advanced_analytics"
	FeatureBrandDeals        Feature = "brand_deals"
	FeaturePrioritySupport   Feature = "priority_support"
)

type PanelKey string

const (
	PanelAnalytics  PanelKey = "analytics"
	PanelContent    PanelKey = "content"
	PanelMonetize   PanelKey = "monetization"
	PanelSocial     PanelKey = "social"
	PanelAICalendar PanelKey = "ai_calendar"
)
