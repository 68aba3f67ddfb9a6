package integration

// Descriptor is the static presentation data shown next to an integration.
type Descriptor struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	IconColor   string `json:"iconColor"`
}

var descriptors = map[Type]Descriptor{
	TypeTwilio: {
		Name:        "Twilio",
		Description: "Phone calls and SMS for the AI receptionist",
		IconColor:   "#F22F46",
	},
	TypeElevenLabs: {
		Name:        "ElevenLabs",
		Description: "Natural voice synthesis for call responses",
		IconColor:   "#000000",
	},
	TypeN8n: {
		Name:        "n8n",
		Description: "Workflow automation for calls and bookings",
		IconColor:   "#EA4B71",
	},
	TypeStripe: {
		Name:        "Stripe",
		Description: "Payments and subscription billing",
		IconColor:   "#635BFF",
	},
	TypeEmail: {
		Name:        "Email",
		Description: "Email notifications for bookings and reports",
		IconColor:   "#4F46E5",
	},
}

func Describe(t Type) Descriptor {
	if d, ok := descriptors[t]; ok {
		return d
	}
	return Descriptor{Name: string(t), IconColor: "#6B7280"}
}
