package telephony

import (
	"encoding/xml"
	"fmt"
)

// GatherPath receives the caller's speech collected by the greeting.
const GatherPath = "/api/webhooks/twilio/gather"

type response struct {
	XMLName xml.Name `xml:"Response"`
	Verbs   []any
}

type say struct {
	XMLName xml.Name `xml:"Say"`
	Text    string   `xml:",chardata"`
}

type gather struct {
	XMLName xml.Name `xml:"Gather"`
	Input   string   `xml:"input,attr"`
	Timeout int      `xml:"timeout,attr"`
	Action  string   `xml:"action,attr"`
	Method  string   `xml:"method,attr"`
	Prompt  say
}

type dial struct {
	XMLName xml.Name `xml:"Dial"`
	Number  string   `xml:",chardata"`
}

type hangup struct {
	XMLName xml.Name `xml:"Hangup"`
}

func render(verbs ...any) []byte {
	out, err := xml.MarshalIndent(response{Verbs: verbs}, "", "  ")
	if err != nil {
		// Only fixed verb types are marshalled here.
		panic(err)
	}
	return append([]byte(xml.Header), out...)
}

// GreetingTwiML welcomes the caller, listens for speech and, when nothing is
// heard, transfers to the fallback line (or hangs up without one).
func (s *Service) GreetingTwiML(businessName string) []byte {
	verbs := []any{
		say{Text: fmt.Sprintf("Thank you for calling %s. Our AI assistant is ready to help you.", businessName)},
		gather{
			Input:   "speech",
			Timeout: 5,
			Action:  GatherPath,
			Method:  "POST",
			Prompt:  say{Text: "Please tell me how I can assist you today."},
		},
	}
	if s.fallbackNumber != "" {
		verbs = append(verbs,
			say{Text: "I didn't hear anything. Let me transfer you to someone who can help."},
			dial{Number: s.fallbackNumber},
		)
	} else {
		verbs = append(verbs,
			say{Text: "I didn't hear anything. Please call again later."},
			hangup{},
		)
	}
	return render(verbs...)
}

// GatherReplyTwiML acknowledges captured speech before the workflow takes
// over the conversation.
func (s *Service) GatherReplyTwiML() []byte {
	return render(
		say{Text: "Thank you. One moment while I look into that for you."},
		hangup{},
	)
}

func (s *Service) ErrorTwiML() []byte {
	return render(
		say{Text: "I'm sorry, we're experiencing technical difficulties. Please try again later or call our main line for assistance."},
		hangup{},
	)
}
