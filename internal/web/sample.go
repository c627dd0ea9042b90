package web

// The overview, punishments and history pages show fixed sample data until
// the moderation engine reports real activity.

type statCard struct {
	Title    string
	Value    string
	Change   string
	Positive bool
	Status   string
}

type activity struct {
	Title string
	When  string
}

type overviewContent struct {
	Stats    []statCard
	Activity []activity
}

type punishedMember struct {
	Name            string
	Email           string
	Status          string
	PostWarnings    int
	CommentWarnings int
	BanReason       string
}

type historyEntry struct {
	Type      string
	User      string
	Action    string
	Reason    string
	Timestamp string
}

type plan struct {
	Name        string
	Price       string
	Description string
	Features    []string
	Popular     bool
}

// IsCustom reports whether the plan is priced on request.
func (p plan) IsCustom() bool {
	return p.Price == "Custom"
}

var sampleOverview = overviewContent{
	Stats: []statCard{
		{Title: "Bot Status", Value: "Offline", Status: "offline"},
		{Title: "Active Discussions", Value: "56", Change: "+8%", Positive: true},
		{Title: "Response Time", Value: "1.2m", Change: "-25%", Positive: true},
	},
	Activity: []activity{
		{Title: "New member joined", When: "2 minutes ago"},
		{Title: "New member joined", When: "2 minutes ago"},
		{Title: "New member joined", When: "2 minutes ago"},
	},
}

var samplePunishments = []punishedMember{
	{Name: "John Doe", Email: "john@example.com", Status: "banned", PostWarnings: 3, CommentWarnings: 2, BanReason: "Multiple violations of community guidelines"},
	{Name: "Jane Smith", Email: "jane@example.com", PostWarnings: 1},
	{Name: "Mike Johnson", Email: "mike@example.com", Status: "banned", PostWarnings: 5, CommentWarnings: 4, BanReason: "Repeated inappropriate content"},
}

var sampleHistory = []historyEntry{
	{Type: "warning", User: "John Doe", Action: "Post Warning", Reason: "Inappropriate content in post", Timestamp: "5 mins ago"},
	{Type: "ban", User: "Mike Johnson", Action: "User Banned", Reason: "Multiple violations of community guidelines", Timestamp: "1 hour ago"},
	{Type: "flag", User: "Jane Smith", Action: "Comment Flagged", Reason: "Potential spam content", Timestamp: "2 hours ago"},
}

var pricingPlans = []plan{
	{
		Name:        "Starter",
		Price:       "49",
		Description: "Perfect for small communities",
		Features:    []string{"Basic moderation tools", "Up to 1,000 members", "Community insights", "Email support", "1 admin account"},
	},
	{
		Name:        "Pro",
		Price:       "99",
		Description: "For growing communities",
		Features:    []string{"Advanced AI moderation", "Up to 10,000 members", "Advanced analytics", "Priority support", "Custom workflows", "5 admin accounts"},
		Popular:     true,
	},
	{
		Name:        "Enterprise",
		Price:       "Custom",
		Description: "For large communities",
		Features:    []string{"Custom AI models", "Unlimited members", "Advanced security", "Dedicated support", "Custom integrations", "Unlimited admins"},
	},
}
