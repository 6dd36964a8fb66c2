package constants

// NotAvailable fills scalar card fields the extractor could not find.
const NotAvailable = "N/A"

// CardsKey is the durable storage key holding the serialized card list.
const CardsKey = "cards"

// Session keys for the credential configuration. These never reach durable storage.
const (
	SessionKeyAPIKey   = "ai_api_key"
	SessionKeyProvider = "ai_provider"
)

// ListDelimiter separates sequence values when a list field is edited as text.
const ListDelimiter = ";"

// ListJoiner joins sequence values in flat export formats.
const ListJoiner = "; "
