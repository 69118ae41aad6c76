package rpc

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/danmuck/esphost/internal/protocol"
)

// MsgID identifies the message inside an envelope. Its numeric value is also
// the field number of the envelope payload.
type MsgID uint16

// Requests, host to co-processor.
const (
	MsgIDInvalid                               MsgID = 0
	ReqBase                                    MsgID = 256
	ReqGetMacAddress                           MsgID = 257
	ReqSetMacAddress                           MsgID = 258
	ReqGetWifiMode                             MsgID = 259
	ReqSetWifiMode                             MsgID = 260
	ReqWifiSetPs                               MsgID = 270
	ReqWifiGetPs                               MsgID = 271
	ReqOtaBegin                                MsgID = 272
	ReqOtaWrite                                MsgID = 273
	ReqOtaEnd                                  MsgID = 274
	ReqWifiSetMaxTxPower                       MsgID = 275
	ReqWifiGetMaxTxPower                       MsgID = 276
	ReqConfigHeartbeat                         MsgID = 277
	ReqWifiInit                                MsgID = 278
	ReqWifiDeinit                              MsgID = 279
	ReqWifiStart                               MsgID = 280
	ReqWifiStop                                MsgID = 281
	ReqWifiConnect                             MsgID = 282
	ReqWifiDisconnect                          MsgID = 283
	ReqWifiSetConfig                           MsgID = 284
	ReqWifiGetConfig                           MsgID = 285
	ReqWifiScanStart                           MsgID = 286
	ReqWifiScanStop                            MsgID = 287
	ReqWifiScanGetApNum                        MsgID = 288
	ReqWifiScanGetApRecords                    MsgID = 289
	ReqWifiClearApList                         MsgID = 290
	ReqWifiRestore                             MsgID = 291
	ReqWifiClearFastConnect                    MsgID = 292
	ReqWifiDeauthSta                           MsgID = 293
	ReqWifiStaGetApInfo                        MsgID = 294
	ReqWifiSetProtocol                         MsgID = 297
	ReqWifiGetProtocol                         MsgID = 298
	ReqWifiSetBandwidth                        MsgID = 299
	ReqWifiGetBandwidth                        MsgID = 300
	ReqWifiSetChannel                          MsgID = 301
	ReqWifiGetChannel                          MsgID = 302
	ReqWifiSetCountry                          MsgID = 303
	ReqWifiGetCountry                          MsgID = 304
	ReqWifiSetPromiscuous                      MsgID = 305
	ReqWifiGetPromiscuous                      MsgID = 306
	ReqWifiSetPromiscuousFilter                MsgID = 307
	ReqWifiGetPromiscuousFilter                MsgID = 308
	ReqWifiSetPromiscuousCtrlFilter            MsgID = 309
	ReqWifiGetPromiscuousCtrlFilter            MsgID = 310
	ReqWifiApGetStaList                        MsgID = 311
	ReqWifiApGetStaAid                         MsgID = 312
	ReqWifiSetStorage                          MsgID = 313
	ReqWifiSetVendorIe                         MsgID = 314
	ReqWifiSetEventMask                        MsgID = 315
	ReqWifiGetEventMask                        MsgID = 316
	ReqWifi80211Tx                             MsgID = 317
	ReqWifiSetCsiConfig                        MsgID = 318
	ReqWifiSetCsi                              MsgID = 319
	ReqWifiSetAntGpio                          MsgID = 320
	ReqWifiGetAntGpio                          MsgID = 321
	ReqWifiSetAnt                              MsgID = 322
	ReqWifiGetAnt                              MsgID = 323
	ReqWifiGetTsfTime                          MsgID = 324
	ReqWifiSetInactiveTime                     MsgID = 325
	ReqWifiGetInactiveTime                     MsgID = 326
	ReqWifiStatisDump                          MsgID = 327
	ReqWifiSetRssiThreshold                    MsgID = 328
	ReqWifiFtmInitiateSession                  MsgID = 329
	ReqWifiFtmEndSession                       MsgID = 330
	ReqWifiFtmRespSetOffset                    MsgID = 331
	ReqWifiConfig11bRate                       MsgID = 332
	ReqWifiConnectionlessModuleSetWakeInterval MsgID = 333
	ReqWifiSetCountryCode                      MsgID = 334
	ReqWifiGetCountryCode                      MsgID = 335
	ReqWifiConfig80211TxRate                   MsgID = 336
	ReqWifiDisablePmfConfig                    MsgID = 337
	ReqWifiStaGetAid                           MsgID = 338
	ReqWifiStaGetNegotiatedPhymode             MsgID = 339
	ReqWifiSetDynamicCs                        MsgID = 340
	ReqWifiStaGetRssi                          MsgID = 341
	ReqWifiSetProtocols                        MsgID = 342
	ReqWifiGetProtocols                        MsgID = 343
	ReqWifiSetBandwidths                       MsgID = 344
	ReqWifiGetBandwidths                       MsgID = 345
	ReqWifiSetBand                             MsgID = 346
	ReqWifiGetBand                             MsgID = 347
	ReqWifiSetBandMode                         MsgID = 348
	ReqWifiGetBandMode                         MsgID = 349
	ReqGetCoprocessorFwVersion                 MsgID = 350
	ReqWifiScanGetApRecord                     MsgID = 351
	ReqMax                                     MsgID = 352
)

// Responses. Each is its request plus RespBase-ReqBase.
const (
	RespBase                                    MsgID = 512
	RespGetMacAddress                           MsgID = 513
	RespSetMacAddress                           MsgID = 514
	RespGetWifiMode                             MsgID = 515
	RespSetWifiMode                             MsgID = 516
	RespWifiSetPs                               MsgID = 526
	RespWifiGetPs                               MsgID = 527
	RespOtaBegin                                MsgID = 528
	RespOtaWrite                                MsgID = 529
	RespOtaEnd                                  MsgID = 530
	RespWifiSetMaxTxPower                       MsgID = 531
	RespWifiGetMaxTxPower                       MsgID = 532
	RespConfigHeartbeat                         MsgID = 533
	RespWifiInit                                MsgID = 534
	RespWifiDeinit                              MsgID = 535
	RespWifiStart                               MsgID = 536
	RespWifiStop                                MsgID = 537
	RespWifiConnect                             MsgID = 538
	RespWifiDisconnect                          MsgID = 539
	RespWifiSetConfig                           MsgID = 540
	RespWifiGetConfig                           MsgID = 541
	RespWifiScanStart                           MsgID = 542
	RespWifiScanStop                            MsgID = 543
	RespWifiScanGetApNum                        MsgID = 544
	RespWifiScanGetApRecords                    MsgID = 545
	RespWifiClearApList                         MsgID = 546
	RespWifiRestore                             MsgID = 547
	RespWifiClearFastConnect                    MsgID = 548
	RespWifiDeauthSta                           MsgID = 549
	RespWifiStaGetApInfo                        MsgID = 550
	RespWifiSetProtocol                         MsgID = 553
	RespWifiGetProtocol                         MsgID = 554
	RespWifiSetBandwidth                        MsgID = 555
	RespWifiGetBandwidth                        MsgID = 556
	RespWifiSetChannel                          MsgID = 557
	RespWifiGetChannel                          MsgID = 558
	RespWifiSetCountry                          MsgID = 559
	RespWifiGetCountry                          MsgID = 560
	RespWifiSetPromiscuous                      MsgID = 561
	RespWifiGetPromiscuous                      MsgID = 562
	RespWifiSetPromiscuousFilter                MsgID = 563
	RespWifiGetPromiscuousFilter                MsgID = 564
	RespWifiSetPromiscuousCtrlFilter            MsgID = 565
	RespWifiGetPromiscuousCtrlFilter            MsgID = 566
	RespWifiApGetStaList                        MsgID = 567
	RespWifiApGetStaAid                         MsgID = 568
	RespWifiSetStorage                          MsgID = 569
	RespWifiSetVendorIe                         MsgID = 570
	RespWifiSetEventMask                        MsgID = 571
	RespWifiGetEventMask                        MsgID = 572
	RespWifi80211Tx                             MsgID = 573
	RespWifiSetCsiConfig                        MsgID = 574
	RespWifiSetCsi                              MsgID = 575
	RespWifiSetAntGpio                          MsgID = 576
	RespWifiGetAntGpio                          MsgID = 577
	RespWifiSetAnt                              MsgID = 578
	RespWifiGetAnt                              MsgID = 579
	RespWifiGetTsfTime                          MsgID = 580
	RespWifiSetInactiveTime                     MsgID = 581
	RespWifiGetInactiveTime                     MsgID = 582
	RespWifiStatisDump                          MsgID = 583
	RespWifiSetRssiThreshold                    MsgID = 584
	RespWifiFtmInitiateSession                  MsgID = 585
	RespWifiFtmEndSession                       MsgID = 586
	RespWifiFtmRespSetOffset                    MsgID = 587
	RespWifiConfig11bRate                       MsgID = 588
	RespWifiConnectionlessModuleSetWakeInterval MsgID = 589
	RespWifiSetCountryCode                      MsgID = 590
	RespWifiGetCountryCode                      MsgID = 591
	RespWifiConfig80211TxRate                   MsgID = 592
	RespWifiDisablePmfConfig                    MsgID = 593
	RespWifiStaGetAid                           MsgID = 594
	RespWifiStaGetNegotiatedPhymode             MsgID = 595
	RespWifiSetDynamicCs                        MsgID = 596
	RespWifiStaGetRssi                          MsgID = 597
	RespWifiSetProtocols                        MsgID = 598
	RespWifiGetProtocols                        MsgID = 599
	RespWifiSetBandwidths                       MsgID = 600
	RespWifiGetBandwidths                       MsgID = 601
	RespWifiSetBand                             MsgID = 602
	RespWifiGetBand                             MsgID = 603
	RespWifiSetBandMode                         MsgID = 604
	RespWifiGetBandMode                         MsgID = 605
	RespGetCoprocessorFwVersion                 MsgID = 606
	RespWifiScanGetApRecord                     MsgID = 607
	RespMax                                     MsgID = 608
)

// Unsolicited events.
const (
	EventBase              MsgID = 768
	EventEspInit           MsgID = 769
	EventHeartbeat         MsgID = 770
	EventApStaConnected    MsgID = 771
	EventApStaDisconnected MsgID = 772
	EventWifiEventNoArgs   MsgID = 773
	EventStaScanDone       MsgID = 774
	EventStaConnected      MsgID = 775
	EventStaDisconnected   MsgID = 776
	EventMax               MsgID = 777
)

var msgNames = map[MsgID]string{
	ReqGetMacAddress:                            "ReqGetMacAddress",
	ReqSetMacAddress:                            "ReqSetMacAddress",
	ReqGetWifiMode:                              "ReqGetWifiMode",
	ReqSetWifiMode:                              "ReqSetWifiMode",
	ReqWifiSetPs:                                "ReqWifiSetPs",
	ReqWifiGetPs:                                "ReqWifiGetPs",
	ReqOtaBegin:                                 "ReqOtaBegin",
	ReqOtaWrite:                                 "ReqOtaWrite",
	ReqOtaEnd:                                   "ReqOtaEnd",
	ReqWifiSetMaxTxPower:                        "ReqWifiSetMaxTxPower",
	ReqWifiGetMaxTxPower:                        "ReqWifiGetMaxTxPower",
	ReqConfigHeartbeat:                          "ReqConfigHeartbeat",
	ReqWifiInit:                                 "ReqWifiInit",
	ReqWifiDeinit:                               "ReqWifiDeinit",
	ReqWifiStart:                                "ReqWifiStart",
	ReqWifiStop:                                 "ReqWifiStop",
	ReqWifiConnect:                              "ReqWifiConnect",
	ReqWifiDisconnect:                           "ReqWifiDisconnect",
	ReqWifiSetConfig:                            "ReqWifiSetConfig",
	ReqWifiGetConfig:                            "ReqWifiGetConfig",
	ReqWifiScanStart:                            "ReqWifiScanStart",
	ReqWifiScanStop:                             "ReqWifiScanStop",
	ReqWifiScanGetApNum:                         "ReqWifiScanGetApNum",
	ReqWifiScanGetApRecords:                     "ReqWifiScanGetApRecords",
	ReqWifiClearApList:                          "ReqWifiClearApList",
	ReqWifiRestore:                              "ReqWifiRestore",
	ReqWifiClearFastConnect:                     "ReqWifiClearFastConnect",
	ReqWifiDeauthSta:                            "ReqWifiDeauthSta",
	ReqWifiStaGetApInfo:                         "ReqWifiStaGetApInfo",
	ReqWifiSetProtocol:                          "ReqWifiSetProtocol",
	ReqWifiGetProtocol:                          "ReqWifiGetProtocol",
	ReqWifiSetBandwidth:                         "ReqWifiSetBandwidth",
	ReqWifiGetBandwidth:                         "ReqWifiGetBandwidth",
	ReqWifiSetChannel:                           "ReqWifiSetChannel",
	ReqWifiGetChannel:                           "ReqWifiGetChannel",
	ReqWifiSetCountry:                           "ReqWifiSetCountry",
	ReqWifiGetCountry:                           "ReqWifiGetCountry",
	ReqWifiSetPromiscuous:                       "ReqWifiSetPromiscuous",
	ReqWifiGetPromiscuous:                       "ReqWifiGetPromiscuous",
	ReqWifiSetPromiscuousFilter:                 "ReqWifiSetPromiscuousFilter",
	ReqWifiGetPromiscuousFilter:                 "ReqWifiGetPromiscuousFilter",
	ReqWifiSetPromiscuousCtrlFilter:             "ReqWifiSetPromiscuousCtrlFilter",
	ReqWifiGetPromiscuousCtrlFilter:             "ReqWifiGetPromiscuousCtrlFilter",
	ReqWifiApGetStaList:                         "ReqWifiApGetStaList",
	ReqWifiApGetStaAid:                          "ReqWifiApGetStaAid",
	ReqWifiSetStorage:                           "ReqWifiSetStorage",
	ReqWifiSetVendorIe:                          "ReqWifiSetVendorIe",
	ReqWifiSetEventMask:                         "ReqWifiSetEventMask",
	ReqWifiGetEventMask:                         "ReqWifiGetEventMask",
	ReqWifi80211Tx:                              "ReqWifi80211Tx",
	ReqWifiSetCsiConfig:                         "ReqWifiSetCsiConfig",
	ReqWifiSetCsi:                               "ReqWifiSetCsi",
	ReqWifiSetAntGpio:                           "ReqWifiSetAntGpio",
	ReqWifiGetAntGpio:                           "ReqWifiGetAntGpio",
	ReqWifiSetAnt:                               "ReqWifiSetAnt",
	ReqWifiGetAnt:                               "ReqWifiGetAnt",
	ReqWifiGetTsfTime:                           "ReqWifiGetTsfTime",
	ReqWifiSetInactiveTime:                      "ReqWifiSetInactiveTime",
	ReqWifiGetInactiveTime:                      "ReqWifiGetInactiveTime",
	ReqWifiStatisDump:                           "ReqWifiStatisDump",
	ReqWifiSetRssiThreshold:                     "ReqWifiSetRssiThreshold",
	ReqWifiFtmInitiateSession:                   "ReqWifiFtmInitiateSession",
	ReqWifiFtmEndSession:                        "ReqWifiFtmEndSession",
	ReqWifiFtmRespSetOffset:                     "ReqWifiFtmRespSetOffset",
	ReqWifiConfig11bRate:                        "ReqWifiConfig11bRate",
	ReqWifiConnectionlessModuleSetWakeInterval:  "ReqWifiConnectionlessModuleSetWakeInterval",
	ReqWifiSetCountryCode:                       "ReqWifiSetCountryCode",
	ReqWifiGetCountryCode:                       "ReqWifiGetCountryCode",
	ReqWifiConfig80211TxRate:                    "ReqWifiConfig80211TxRate",
	ReqWifiDisablePmfConfig:                     "ReqWifiDisablePmfConfig",
	ReqWifiStaGetAid:                            "ReqWifiStaGetAid",
	ReqWifiStaGetNegotiatedPhymode:              "ReqWifiStaGetNegotiatedPhymode",
	ReqWifiSetDynamicCs:                         "ReqWifiSetDynamicCs",
	ReqWifiStaGetRssi:                           "ReqWifiStaGetRssi",
	ReqWifiSetProtocols:                         "ReqWifiSetProtocols",
	ReqWifiGetProtocols:                         "ReqWifiGetProtocols",
	ReqWifiSetBandwidths:                        "ReqWifiSetBandwidths",
	ReqWifiGetBandwidths:                        "ReqWifiGetBandwidths",
	ReqWifiSetBand:                              "ReqWifiSetBand",
	ReqWifiGetBand:                              "ReqWifiGetBand",
	ReqWifiSetBandMode:                          "ReqWifiSetBandMode",
	ReqWifiGetBandMode:                          "ReqWifiGetBandMode",
	ReqGetCoprocessorFwVersion:                  "ReqGetCoprocessorFwVersion",
	ReqWifiScanGetApRecord:                      "ReqWifiScanGetApRecord",
	RespGetMacAddress:                           "RespGetMacAddress",
	RespSetMacAddress:                           "RespSetMacAddress",
	RespGetWifiMode:                             "RespGetWifiMode",
	RespSetWifiMode:                             "RespSetWifiMode",
	RespWifiSetPs:                               "RespWifiSetPs",
	RespWifiGetPs:                               "RespWifiGetPs",
	RespOtaBegin:                                "RespOtaBegin",
	RespOtaWrite:                                "RespOtaWrite",
	RespOtaEnd:                                  "RespOtaEnd",
	RespWifiSetMaxTxPower:                       "RespWifiSetMaxTxPower",
	RespWifiGetMaxTxPower:                       "RespWifiGetMaxTxPower",
	RespConfigHeartbeat:                         "RespConfigHeartbeat",
	RespWifiInit:                                "RespWifiInit",
	RespWifiDeinit:                              "RespWifiDeinit",
	RespWifiStart:                               "RespWifiStart",
	RespWifiStop:                                "RespWifiStop",
	RespWifiConnect:                             "RespWifiConnect",
	RespWifiDisconnect:                          "RespWifiDisconnect",
	RespWifiSetConfig:                           "RespWifiSetConfig",
	RespWifiGetConfig:                           "RespWifiGetConfig",
	RespWifiScanStart:                           "RespWifiScanStart",
	RespWifiScanStop:                            "RespWifiScanStop",
	RespWifiScanGetApNum:                        "RespWifiScanGetApNum",
	RespWifiScanGetApRecords:                    "RespWifiScanGetApRecords",
	RespWifiClearApList:                         "RespWifiClearApList",
	RespWifiRestore:                             "RespWifiRestore",
	RespWifiClearFastConnect:                    "RespWifiClearFastConnect",
	RespWifiDeauthSta:                           "RespWifiDeauthSta",
	RespWifiStaGetApInfo:                        "RespWifiStaGetApInfo",
	RespWifiSetProtocol:                         "RespWifiSetProtocol",
	RespWifiGetProtocol:                         "RespWifiGetProtocol",
	RespWifiSetBandwidth:                        "RespWifiSetBandwidth",
	RespWifiGetBandwidth:                        "RespWifiGetBandwidth",
	RespWifiSetChannel:                          "RespWifiSetChannel",
	RespWifiGetChannel:                          "RespWifiGetChannel",
	RespWifiSetCountry:                          "RespWifiSetCountry",
	RespWifiGetCountry:                          "RespWifiGetCountry",
	RespWifiSetPromiscuous:                      "RespWifiSetPromiscuous",
	RespWifiGetPromiscuous:                      "RespWifiGetPromiscuous",
	RespWifiSetPromiscuousFilter:                "RespWifiSetPromiscuousFilter",
	RespWifiGetPromiscuousFilter:                "RespWifiGetPromiscuousFilter",
	RespWifiSetPromiscuousCtrlFilter:            "RespWifiSetPromiscuousCtrlFilter",
	RespWifiGetPromiscuousCtrlFilter:            "RespWifiGetPromiscuousCtrlFilter",
	RespWifiApGetStaList:                        "RespWifiApGetStaList",
	RespWifiApGetStaAid:                         "RespWifiApGetStaAid",
	RespWifiSetStorage:                          "RespWifiSetStorage",
	RespWifiSetVendorIe:                         "RespWifiSetVendorIe",
	RespWifiSetEventMask:                        "RespWifiSetEventMask",
	RespWifiGetEventMask:                        "RespWifiGetEventMask",
	RespWifi80211Tx:                             "RespWifi80211Tx",
	RespWifiSetCsiConfig:                        "RespWifiSetCsiConfig",
	RespWifiSetCsi:                              "RespWifiSetCsi",
	RespWifiSetAntGpio:                          "RespWifiSetAntGpio",
	RespWifiGetAntGpio:                          "RespWifiGetAntGpio",
	RespWifiSetAnt:                              "RespWifiSetAnt",
	RespWifiGetAnt:                              "RespWifiGetAnt",
	RespWifiGetTsfTime:                          "RespWifiGetTsfTime",
	RespWifiSetInactiveTime:                     "RespWifiSetInactiveTime",
	RespWifiGetInactiveTime:                     "RespWifiGetInactiveTime",
	RespWifiStatisDump:                          "RespWifiStatisDump",
	RespWifiSetRssiThreshold:                    "RespWifiSetRssiThreshold",
	RespWifiFtmInitiateSession:                  "RespWifiFtmInitiateSession",
	RespWifiFtmEndSession:                       "RespWifiFtmEndSession",
	RespWifiFtmRespSetOffset:                    "RespWifiFtmRespSetOffset",
	RespWifiConfig11bRate:                       "RespWifiConfig11bRate",
	RespWifiConnectionlessModuleSetWakeInterval: "RespWifiConnectionlessModuleSetWakeInterval",
	RespWifiSetCountryCode:                      "RespWifiSetCountryCode",
	RespWifiGetCountryCode:                      "RespWifiGetCountryCode",
	RespWifiConfig80211TxRate:                   "RespWifiConfig80211TxRate",
	RespWifiDisablePmfConfig:                    "RespWifiDisablePmfConfig",
	RespWifiStaGetAid:                           "RespWifiStaGetAid",
	RespWifiStaGetNegotiatedPhymode:             "RespWifiStaGetNegotiatedPhymode",
	RespWifiSetDynamicCs:                        "RespWifiSetDynamicCs",
	RespWifiStaGetRssi:                          "RespWifiStaGetRssi",
	RespWifiSetProtocols:                        "RespWifiSetProtocols",
	RespWifiGetProtocols:                        "RespWifiGetProtocols",
	RespWifiSetBandwidths:                       "RespWifiSetBandwidths",
	RespWifiGetBandwidths:                       "RespWifiGetBandwidths",
	RespWifiSetBand:                             "RespWifiSetBand",
	RespWifiGetBand:                             "RespWifiGetBand",
	RespWifiSetBandMode:                         "RespWifiSetBandMode",
	RespWifiGetBandMode:                         "RespWifiGetBandMode",
	RespGetCoprocessorFwVersion:                 "RespGetCoprocessorFwVersion",
	RespWifiScanGetApRecord:                     "RespWifiScanGetApRecord",
	EventEspInit:                                "EventEspInit",
	EventHeartbeat:                              "EventHeartbeat",
	EventApStaConnected:                         "EventApStaConnected",
	EventApStaDisconnected:                      "EventApStaDisconnected",
	EventWifiEventNoArgs:                        "EventWifiEventNoArgs",
	EventStaScanDone:                            "EventStaScanDone",
	EventStaConnected:                           "EventStaConnected",
	EventStaDisconnected:                        "EventStaDisconnected",
}

// Known reports whether id is a defined message, excluding the range markers.
func (id MsgID) Known() bool {
	_, ok := msgNames[id]
	return ok
}

// ParseMsgID accepts a message name such as "ReqGetWifiMode", matched
// without regard to case, or a numeric id.
func ParseMsgID(raw string) (MsgID, error) {
	raw = strings.TrimSpace(raw)
	if v, err := strconv.ParseUint(raw, 0, 16); err == nil {
		if id := MsgID(v); id.Known() {
			return id, nil
		}
		return MsgIDInvalid, fmt.Errorf("%w: msg_id %d", protocol.ErrInvalidData, v)
	}
	for id, name := range msgNames {
		if strings.EqualFold(name, raw) {
			return id, nil
		}
	}
	return MsgIDInvalid, fmt.Errorf("%w: unknown message %q", protocol.ErrInvalidData, raw)
}

func (id MsgID) String() string {
	if name, ok := msgNames[id]; ok {
		return name
	}
	return fmt.Sprintf("msg_id(%d)", uint16(id))
}

// Class returns the envelope type implied by the id's numeric range.
func (id MsgID) Class() MsgType {
	switch {
	case id > ReqBase && id < ReqMax:
		return TypeReq
	case id > RespBase && id < RespMax:
		return TypeResp
	case id > EventBase && id < EventMax:
		return TypeEvent
	default:
		return TypeInvalid
	}
}

// Response returns the response id paired with a request id.
func (id MsgID) Response() (MsgID, bool) {
	if id.Class() != TypeReq {
		return MsgIDInvalid, false
	}
	resp := id + (RespBase - ReqBase)
	return resp, resp.Known()
}

// Request returns the request id paired with a response id.
func (id MsgID) Request() (MsgID, bool) {
	if id.Class() != TypeResp {
		return MsgIDInvalid, false
	}
	req := id - (RespBase - ReqBase)
	return req, req.Known()
}
