package input

import (
	"encoding/json"
	"io"
	"strconv"

	"github.com/pkg/errors"
	"github.com/smartcontractkit/chainlink-relay/pkg/utils"

	"github.com/smartcontractkit/chainlink-starknet/pkg/starknet/felt"
	"github.com/smartcontractkit/chainlink-starknet/pkg/starknet/ocr2/codec"
	"github.com/smartcontractkit/chainlink-starknet/pkg/starknet/ocr2/offchainconfig"
)

// RDD is the subset of the reference data directory describing aggregators and the
// node operators that serve them.
type RDD struct {
	Contracts map[string]RDDContract `json:"contracts"`
	Operators map[string]RDDOperator `json:"operators"`
}

type RDDContract struct {
	Config  RDDAggregatorConfig `json:"config"`
	Oracles []struct {
		Operator string `json:"operator"`
	} `json:"oracles"`
}

// RDDAggregatorConfig carries durations as strings such as "8s" or "500ms".
type RDDAggregatorConfig struct {
	F                     uint8          `json:"f"`
	DeltaProgress         utils.Duration `json:"deltaProgress"`
	DeltaResend           utils.Duration `json:"deltaResend"`
	DeltaRound            utils.Duration `json:"deltaRound"`
	DeltaGrace            utils.Duration `json:"deltaGrace"`
	DeltaStage            utils.Duration `json:"deltaStage"`
	RMax                  int64          `json:"rMax"`
	S                     []int64        `json:"s"`
	ReportingPluginConfig struct {
		AlphaReportInfinite bool           `json:"alphaReportInfinite"`
		AlphaReportPpb      json.Number    `json:"alphaReportPpb"`
		AlphaAcceptInfinite bool           `json:"alphaAcceptInfinite"`
		AlphaAcceptPpb      json.Number    `json:"alphaAcceptPpb"`
		DeltaC              utils.Duration `json:"deltaC"`
	} `json:"reportingPluginConfig"`
	MaxDurationQuery                        utils.Duration `json:"maxDurationQuery"`
	MaxDurationObservation                  utils.Duration `json:"maxDurationObservation"`
	MaxDurationReport                       utils.Duration `json:"maxDurationReport"`
	MaxDurationShouldAcceptFinalizedReport  utils.Duration `json:"maxDurationShouldAcceptFinalizedReport"`
	MaxDurationShouldTransmitAcceptedReport utils.Duration `json:"maxDurationShouldTransmitAcceptedReport"`
}

// RDDOperator lists node exported keys; the first entry of each is used.
type RDDOperator struct {
	PeerID                []string `json:"peerId"`
	OCR2OnchainPublicKey  []string `json:"ocr2OnchainPublicKey"`
	OCR2OffchainPublicKey []string `json:"ocr2OffchainPublicKey"`
	OCR2ConfigPublicKey   []string `json:"ocr2ConfigPublicKey"`
	OCRNodeAddress        []string `json:"ocrNodeAddress"`
}

func LoadRDD(r io.Reader) (RDD, error) {
	var rdd RDD
	if err := json.NewDecoder(r).Decode(&rdd); err != nil {
		return rdd, errors.Wrap(err, "failed to decode RDD")
	}
	return rdd, nil
}

// Contract looks up an aggregator by address, ignoring hex formatting differences.
func (rdd RDD) Contract(address string) (RDDContract, error) {
	want, err := felt.ParseKey(address)
	if err != nil {
		return RDDContract{}, err
	}
	for addr, c := range rdd.Contracts {
		got, err := felt.ParseKey(addr)
		if err == nil && got.Equal(want) {
			return c, nil
		}
	}
	return RDDContract{}, errors.Errorf("contract %s not found in RDD", address)
}

// SetConfigInput builds the set_config input of an aggregator from its RDD entry.
func (rdd RDD) SetConfigInput(address, secret string) (SetConfigInput, error) {
	contract, err := rdd.Contract(address)
	if err != nil {
		return SetConfigInput{}, err
	}
	cfg := contract.Config

	alphaReportPpb, err := parsePpb("reportingPluginConfig.alphaReportPpb", cfg.ReportingPluginConfig.AlphaReportPpb)
	if err != nil {
		return SetConfigInput{}, err
	}
	alphaAcceptPpb, err := parsePpb("reportingPluginConfig.alphaAcceptPpb", cfg.ReportingPluginConfig.AlphaAcceptPpb)
	if err != nil {
		return SetConfigInput{}, err
	}

	in := SetConfigInput{
		F:                     cfg.F,
		OffchainConfigVersion: codec.OffchainConfigVersion,
		Secret:                secret,
		OffchainConfig: offchainconfig.OffchainConfig{
			DeltaProgress: cfg.DeltaProgress.Duration(),
			DeltaResend:   cfg.DeltaResend.Duration(),
			DeltaRound:    cfg.DeltaRound.Duration(),
			DeltaGrace:    cfg.DeltaGrace.Duration(),
			DeltaStage:    cfg.DeltaStage.Duration(),
			RMax:          cfg.RMax,
			S:             append([]int64(nil), cfg.S...),
			ReportingPluginConfig: offchainconfig.ReportingPluginConfig{
				AlphaReportInfinite: cfg.ReportingPluginConfig.AlphaReportInfinite,
				AlphaReportPpb:      alphaReportPpb,
				AlphaAcceptInfinite: cfg.ReportingPluginConfig.AlphaAcceptInfinite,
				AlphaAcceptPpb:      alphaAcceptPpb,
				DeltaC:              cfg.ReportingPluginConfig.DeltaC.Duration(),
			},
			MaxDurationQuery:                        cfg.MaxDurationQuery.Duration(),
			MaxDurationObservation:                  cfg.MaxDurationObservation.Duration(),
			MaxDurationReport:                       cfg.MaxDurationReport.Duration(),
			MaxDurationShouldAcceptFinalizedReport:  cfg.MaxDurationShouldAcceptFinalizedReport.Duration(),
			MaxDurationShouldTransmitAcceptedReport: cfg.MaxDurationShouldTransmitAcceptedReport.Duration(),
		},
	}

	for i, o := range contract.Oracles {
		op, ok := rdd.Operators[o.Operator]
		if !ok {
			return SetConfigInput{}, errors.Errorf("oracles[%d]: operator %q not found in RDD", i, o.Operator)
		}
		keys, err := op.keys()
		if err != nil {
			return SetConfigInput{}, errors.Wrapf(err, "operator %q", o.Operator)
		}
		in.Signers = append(in.Signers, keys.signer)
		in.Transmitters = append(in.Transmitters, keys.transmitter)
		in.OffchainConfig.PeerIDs = append(in.OffchainConfig.PeerIDs, keys.peerID)
		in.OffchainConfig.OffchainPublicKeys = append(in.OffchainConfig.OffchainPublicKeys, keys.offchain)
		in.OffchainConfig.ConfigPublicKeys = append(in.OffchainConfig.ConfigPublicKeys, keys.config)
	}
	return in, nil
}

type operatorKeys struct {
	signer, transmitter, peerID string
	offchain, config            offchainconfig.PublicKey
}

func (op RDDOperator) keys() (operatorKeys, error) {
	var k operatorKeys
	first := func(name string, values []string) (string, error) {
		if len(values) == 0 || values[0] == "" {
			return "", errors.Errorf("missing %s", name)
		}
		return values[0], nil
	}
	var err error
	if k.signer, err = first("ocr2OnchainPublicKey", op.OCR2OnchainPublicKey); err != nil {
		return k, err
	}
	if k.transmitter, err = first("ocrNodeAddress", op.OCRNodeAddress); err != nil {
		return k, err
	}
	if k.peerID, err = first("peerId", op.PeerID); err != nil {
		return k, err
	}
	offchain, err := first("ocr2OffchainPublicKey", op.OCR2OffchainPublicKey)
	if err != nil {
		return k, err
	}
	if err = k.offchain.UnmarshalText([]byte(offchain)); err != nil {
		return k, errors.Wrap(err, "ocr2OffchainPublicKey")
	}
	config, err := first("ocr2ConfigPublicKey", op.OCR2ConfigPublicKey)
	if err != nil {
		return k, err
	}
	if err = k.config.UnmarshalText([]byte(config)); err != nil {
		return k, errors.Wrap(err, "ocr2ConfigPublicKey")
	}
	return k, nil
}

func parsePpb(field string, n json.Number) (uint64, error) {
	if n == "" {
		return 0, nil
	}
	v, err := strconv.ParseUint(n.String(), 10, 64)
	if err != nil {
		return 0, &InvalidInputError{Prompt: field, Value: n.String(), Err: err}
	}
	return v, nil
}

