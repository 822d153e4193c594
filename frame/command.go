package frame

// STOMP commands. CONNECT and CONNECTED are exempt from header escaping
// in every protocol revision.
const (
	CmdAbort       = "ABORT"
	CmdAck         = "ACK"
	CmdBegin       = "BEGIN"
	CmdCommit      = "COMMIT"
	CmdConnect     = "CONNECT"
	CmdConnected   = "CONNECTED"
	CmdDisconnect  = "DISCONNECT"
	CmdError       = "ERROR"
	CmdMessage     = "MESSAGE"
	CmdNack        = "NACK"
	CmdReceipt     = "RECEIPT"
	CmdSend        = "SEND"
	CmdStomp       = "STOMP"
	CmdSubscribe   = "SUBSCRIBE"
	CmdUnsubscribe = "UNSUBSCRIBE"
)
