package types

// Entity is a resource exposed by the API.
type Entity struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	TableName   string `json:"table_name,omitempty"`
	Description string `json:"description,omitempty"`
	ReadOnly    bool   `json:"read_only"`
}

// Attribute is a field of an Entity.
type Attribute struct {
	ID          string `json:"id"`
	EntityID    string `json:"entity_id"`
	Name        string `json:"name"`
	Type        string `json:"type"`
	Required    bool   `json:"required"`
	Unique      bool   `json:"unique"`
	Default     any    `json:"default,omitempty"`
	Description string `json:"description,omitempty"`
}

// Security schemes accepted by SecurityRule.
const (
	SchemeNone   = "none"
	SchemeBasic  = "basic"
	SchemeAPIKey = "apikey"
	SchemeJWT    = "jwt"
	SchemeOAuth2 = "oauth2"
)

// SecurityRule grants roles access to operations. A rule with an empty
// EntityID applies to the whole API.
type SecurityRule struct {
	ID         string   `json:"id"`
	EntityID   string   `json:"entity_id,omitempty"`
	Scheme     string   `json:"scheme"`
	Roles      []string `json:"roles,omitempty"`
	Operations []string `json:"operations,omitempty"`
}

// Deployment describes where and how the API runs.
type Deployment struct {
	ID          string            `json:"id"`
	Environment string            `json:"environment"`
	Host        string            `json:"host"`
	Port        int               `json:"port"`
	Replicas    int               `json:"replicas"`
	Env         map[string]string `json:"env,omitempty"`
}
