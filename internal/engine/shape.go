package engine

// ResultType tells the storefront how to treat a normalised gateway response.
type ResultType string

const (
	// TypePopup signals the client to open the provider's popup widget with
	// the returned token (Midtrans Snap style).
	TypePopup ResultType = "popup"
	// TypeRaw passes the parsed gateway payload through untouched.
	TypeRaw ResultType = "raw"
)

// Result is the provider-agnostic envelope returned to the web layer.
type Result struct {
	Success     bool           `json:"success"`
	Type        ResultType     `json:"type"`
	Token       string         `json:"token,omitempty"`
	RedirectURL string         `json:"redirect_url,omitempty"`
	Data        map[string]any `json:"data,omitempty"`
}

// responseShape enumerates the supported response envelopes. Providers that
// need a bespoke shape get a new constant and a new case in normalize; every
// other provider flows through shapeRaw with zero code changes.
type responseShape int

const (
	shapeRaw responseShape = iota
	shapePopup
)

var providerShapes = map[string]responseShape{
	"midtrans": shapePopup,
}

func shapeForProvider(slug string) responseShape {
	if shape, ok := providerShapes[slug]; ok {
		return shape
	}
	return shapeRaw
}

func normalize(slug string, payload map[string]any) Result {
	switch shapeForProvider(slug) {
	case shapePopup:
		token, _ := payload["token"].(string)
		redirectURL, _ := payload["redirect_url"].(string)
		return Result{Success: true, Type: TypePopup, Token: token, RedirectURL: redirectURL}
	case shapeRaw:
		return Result{Success: true, Type: TypeRaw, Data: payload}
	default:
		return Result{Success: true, Type: TypeRaw, Data: payload}
	}
}
