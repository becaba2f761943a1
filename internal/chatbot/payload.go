package chatbot

const (
	inboundPath = "/open-channel/1/messages/inbound"

	bodyTypeText = "TEXT"
	defaultText  = "Hello"
)

// InboundMessage is what the platform receives for one user turn. Both
// ResponseWebhook.CallbackData and Metadata are echoed back verbatim in the
// reply webhook, which is how the reply finds its session again.
type InboundMessage struct {
	Sender          string          `json:"sender"`
	Destination     string          `json:"destination"`
	Content         Content         `json:"content"`
	ResponseWebhook ResponseWebhook `json:"responseWebhook"`
	Metadata        map[string]any  `json:"metadata"`
}

type Content struct {
	Body Body `json:"body"`
}

type Body struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type ResponseWebhook struct {
	CallbackData map[string]any `json:"callbackData"`
}

func newInboundMessage(sender, destination, text string, echo map[string]any) InboundMessage {
	if text == "" {
		text = defaultText
	}
	return InboundMessage{
		Sender:      sender,
		Destination: destination,
		Content: Content{
			Body: Body{Type: bodyTypeText, Text: text},
		},
		ResponseWebhook: ResponseWebhook{CallbackData: echo},
		Metadata:        echo,
	}
}
