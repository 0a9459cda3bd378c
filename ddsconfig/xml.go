// Copyright (C) 2026, luxfi/dds Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package ddsconfig

import (
	"encoding/xml"
	"fmt"
	"os"
	"time"

	"github.com/luxfi/dds/retcode"
)

// xmlDomain mirrors a subset of the CycloneDDS XML configuration
// schema (spec.md §6). LoadXML applies only Id, General/Transport and
// Discovery/LeaseDuration; the other fields are parsed but not applied.
// Unknown elements are ignored by encoding/xml and are not rejected.
type xmlDomain struct {
	XMLName xml.Name `xml:"Domain"`
	Id      int32    `xml:"Id,attr"`
	General struct {
		Transport          string `xml:"Transport"`
		AllowMulticast     string `xml:"AllowMulticast"`
		MulticastTimeToLive int   `xml:"MulticastTimeToLive"`
	} `xml:"General"`
	Discovery struct {
		SPDPInterval string `xml:"SPDPInterval"`
		LeaseDuration string `xml:"LeaseDuration"`
	} `xml:"Discovery"`
	Internal struct {
		WatermarkXCDR string `xml:"Watermarks>WhcHigh"`
	} `xml:"Internal"`
}

// LoadXML parses either an XML file path or a literal XML string
// (spec.md: "configured via an XML fragment (path or literal string)")
// and applies it on top of the builder's current defaults.
func LoadXML(b *Builder, pathOrLiteral string) *Builder {
	if b.err != nil {
		return b
	}
	data := []byte(pathOrLiteral)
	if content, err := os.ReadFile(pathOrLiteral); err == nil {
		data = content
	}

	var doc xmlDomain
	if err := xml.Unmarshal(data, &doc); err != nil {
		b.err = fmt.Errorf("%w: parsing domain XML: %v", retcode.ErrBadParameter, err)
		return b
	}

	if doc.Id != 0 {
		b = b.WithDomainID(doc.Id)
	}
	if doc.General.Transport != "" {
		b = b.WithTransport(TransportSelector(doc.General.Transport))
	}
	if doc.Discovery.LeaseDuration != "" {
		d, err := time.ParseDuration(doc.Discovery.LeaseDuration)
		if err != nil {
			b.err = fmt.Errorf("%w: parsing LeaseDuration: %v", retcode.ErrBadParameter, err)
			return b
		}
		b = b.WithLeaseDuration(d)
	}
	return b
}
