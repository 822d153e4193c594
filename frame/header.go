package frame

// Well-known header names.
const (
	HdrAcceptVersion = "accept-version"
	HdrAck           = "ack" // SUBSCRIBE, MESSAGE
	HdrContentLength = "content-length"
	HdrContentType   = "content-type"
	HdrDestination   = "destination" // SEND, SUBSCRIBE, MESSAGE
	HdrHeartBeat     = "heart-beat"
	HdrHost          = "host"
	HdrId            = "id" // SUBSCRIBE, UNSUBSCRIBE (subscription-id), ACK, NACK (=ack of MESSAGE)
	HdrLogin         = "login"
	HdrMessage       = "message"
	HdrMessageId     = "message-id" // MESSAGE
	HdrPasscode      = "passcode"
	HdrReceipt       = "receipt"
	HdrReceiptId     = "receipt-id"
	HdrServer        = "server"
	HdrSession       = "session"
	HdrSubscription  = "subscription" // MESSAGE
	HdrTransaction   = "transaction"
	HdrVersion       = "version"
)

// Ack modes of the "ack" header.
const (
	AckAuto             = "auto"
	AckClient           = "client"
	AckClientIndividual = "client-individual"
)

// HeaderPair is one name/value entry of an ordered raw header sequence.
// Unlike a map it permits duplicate names and preserves wire order.
type HeaderPair struct {
	Name  string
	Value string
}
