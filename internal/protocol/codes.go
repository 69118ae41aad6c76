package protocol

import "fmt"

// ErrorCode is an esp_err_t value reported by the co-processor.
type ErrorCode uint32

const (
	CodeOK   ErrorCode = 0
	CodeFail ErrorCode = 0xFFFFFFFF

	CodeNoMem        ErrorCode = 0x101
	CodeInvalidArg   ErrorCode = 0x102
	CodeInvalidState ErrorCode = 0x103
	CodeInvalidSize  ErrorCode = 0x104
	CodeNotFound     ErrorCode = 0x105
	CodeNotSupported ErrorCode = 0x106
	CodeTimeout      ErrorCode = 0x107

	CodeWifiBase        ErrorCode = 0x3000
	CodeWifiNotInit     ErrorCode = 0x3001
	CodeWifiNotStarted  ErrorCode = 0x3002
	CodeWifiNotStopped  ErrorCode = 0x3003
	CodeWifiIF          ErrorCode = 0x3004
	CodeWifiMode        ErrorCode = 0x3005
	CodeWifiState       ErrorCode = 0x3006
	CodeWifiConn        ErrorCode = 0x3007
	CodeWifiNVS         ErrorCode = 0x3008
	CodeWifiMAC         ErrorCode = 0x3009
	CodeWifiSSID        ErrorCode = 0x300A
	CodeWifiPassword    ErrorCode = 0x300B
	CodeWifiTimeout     ErrorCode = 0x300C
	CodeWifiWakeFail    ErrorCode = 0x300D
	CodeWifiWouldBlock  ErrorCode = 0x300E
	CodeWifiNotConnect  ErrorCode = 0x300F
)

// ESP-Hosted RPC error range.
const (
	CodeHostedBase ErrorCode = 0x2F00 + iota
	CodeNotConnected
	CodeNoApFound
	CodeInvalidPassword
	CodeInvalidArgument
	CodeOutOfRange
	CodeMemoryFailure
	CodeUnsupportedMsg
	CodeIncorrectArg
	CodeProtobufEncode
	CodeProtobufDecode
	CodeSetAsyncCb
	CodeTransportSend
	CodeRequestTimeout
	CodeReqInProg
	CodeSetSyncSem
)

var codeNames = map[ErrorCode]string{
	CodeOK:               "ESP_OK",
	CodeFail:             "ESP_FAIL",
	CodeNoMem:            "ESP_ERR_NO_MEM",
	CodeInvalidArg:       "ESP_ERR_INVALID_ARG",
	CodeInvalidState:     "ESP_ERR_INVALID_STATE",
	CodeInvalidSize:      "ESP_ERR_INVALID_SIZE",
	CodeNotFound:         "ESP_ERR_NOT_FOUND",
	CodeNotSupported:     "ESP_ERR_NOT_SUPPORTED",
	CodeTimeout:          "ESP_ERR_TIMEOUT",
	CodeWifiBase:         "ESP_ERR_WIFI_BASE",
	CodeWifiNotInit:      "ESP_ERR_WIFI_NOT_INIT",
	CodeWifiNotStarted:   "ESP_ERR_WIFI_NOT_STARTED",
	CodeWifiNotStopped:   "ESP_ERR_WIFI_NOT_STOPPED",
	CodeWifiIF:           "ESP_ERR_WIFI_IF",
	CodeWifiMode:         "ESP_ERR_WIFI_MODE",
	CodeWifiState:        "ESP_ERR_WIFI_STATE",
	CodeWifiConn:         "ESP_ERR_WIFI_CONN",
	CodeWifiNVS:          "ESP_ERR_WIFI_NVS",
	CodeWifiMAC:          "ESP_ERR_WIFI_MAC",
	CodeWifiSSID:         "ESP_ERR_WIFI_SSID",
	CodeWifiPassword:     "ESP_ERR_WIFI_PASSWORD",
	CodeWifiTimeout:      "ESP_ERR_WIFI_TIMEOUT",
	CodeWifiWakeFail:     "ESP_ERR_WIFI_WAKE_FAIL",
	CodeWifiWouldBlock:   "ESP_ERR_WIFI_WOULD_BLOCK",
	CodeWifiNotConnect:   "ESP_ERR_WIFI_NOT_CONNECT",
	CodeHostedBase:       "ESP_ERR_HOSTED_BASE",
	CodeNotConnected:     "ESP_ERR_HOSTED_NOT_CONNECTED",
	CodeNoApFound:        "ESP_ERR_HOSTED_NO_AP_FOUND",
	CodeInvalidPassword:  "ESP_ERR_HOSTED_INVALID_PASSWORD",
	CodeInvalidArgument:  "ESP_ERR_HOSTED_INVALID_ARGUMENT",
	CodeOutOfRange:       "ESP_ERR_HOSTED_OUT_OF_RANGE",
	CodeMemoryFailure:    "ESP_ERR_HOSTED_MEMORY_FAILURE",
	CodeUnsupportedMsg:   "ESP_ERR_HOSTED_UNSUPPORTED_MSG",
	CodeIncorrectArg:     "ESP_ERR_HOSTED_INCORRECT_ARG",
	CodeProtobufEncode:   "ESP_ERR_HOSTED_PROTOBUF_ENCODE",
	CodeProtobufDecode:   "ESP_ERR_HOSTED_PROTOBUF_DECODE",
	CodeSetAsyncCb:       "ESP_ERR_HOSTED_SET_ASYNC_CB",
	CodeTransportSend:    "ESP_ERR_HOSTED_TRANSPORT_SEND",
	CodeRequestTimeout:   "ESP_ERR_HOSTED_REQUEST_TIMEOUT",
	CodeReqInProg:        "ESP_ERR_HOSTED_REQ_IN_PROG",
	CodeSetSyncSem:       "ESP_ERR_HOSTED_SET_SYNC_SEM",
}

func (c ErrorCode) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("0x%x", uint32(c))
}

// Hosted reports whether c falls in the ESP-Hosted RPC range.
func (c ErrorCode) Hosted() bool {
	return c >= CodeNotConnected && c <= CodeSetSyncSem
}
