package m3u8

/*
 This file assembles multivariant playlists from decoded tags.
*/

import "fmt"

type groupKey struct {
	typ     string
	groupID string
}

func unassociatedVariant(line int) error {
	return fmt.Errorf("line %d: %w", line, &MalformedTagError{
		Tag:    tagStreamInf,
		Reason: "no URI follows",
		Err:    ErrUnassociatedVariantAttributes,
	})
}

// assembleMultivariant builds a multivariant playlist. An EXT-X-STREAM-INF
// takes the next URI line. One that is followed by another EXT-X-STREAM-INF
// or by the end of the input aborts decoding.
func (d *decoder) assembleMultivariant(entries []entry) (*MultivariantPlaylist, error) {
	var (
		p            = new(MultivariantPlaylist)
		pending      *Variant // EXT-X-STREAM-INF waiting for its URI
		pendingLine  int
		skipURI      bool // a malformed EXT-X-STREAM-INF owns the next URI
		variantLines []int
		groups       = make(map[groupKey]int)
	)
	for _, e := range entries {
		if e.err != nil {
			if e.line.Name == tagStreamInf {
				if pending != nil || skipURI {
					return nil, unassociatedVariant(pendingLine)
				}
				skipURI = true
				pendingLine = e.line.Num
			}
			continue
		}

		switch t := e.tag.(type) {
		case TagVersion:
			p.Version = t.Number
		case TagIndependentSegments:
			p.IndependentSegments = true
		case TagStart:
			start := t.Start
			p.Start = &start
		case TagDefine:
			if t.Type == IMPORT {
				bad := &MalformedTagError{Tag: tagDefine, Payload: e.line.Payload, Reason: "IMPORT is only allowed in media playlists"}
				if err := d.report(e.line.Num, SeverityError, bad); err != nil {
					return nil, err
				}
			}
			p.Defines = append(p.Defines, t.Define)
		case TagStreamInf:
			if pending != nil || skipURI {
				return nil, unassociatedVariant(pendingLine)
			}
			pending = &Variant{VariantParams: t.VariantParams}
			pendingLine = e.line.Num
		case TagIFrameStreamInf:
			p.Variants = append(p.Variants, Variant{URI: t.URI, VariantParams: t.VariantParams})
			variantLines = append(variantLines, e.line.Num)
		case TagURI:
			switch {
			case pending != nil:
				pending.URI = t.URI
				p.Variants = append(p.Variants, *pending)
				variantLines = append(variantLines, pendingLine)
				pending = nil
			case skipURI:
				skipURI = false
			default:
				if err := d.report(e.line.Num, SeverityError, ErrOrphanURI); err != nil {
					return nil, err
				}
			}
		case TagMedia:
			p.Renditions = append(p.Renditions, t.Rendition)
			k := groupKey{typ: t.Type, groupID: t.GroupID}
			i, ok := groups[k]
			if !ok {
				i = len(p.RenditionGroups)
				groups[k] = i
				p.RenditionGroups = append(p.RenditionGroups, RenditionGroup{Type: t.Type, GroupID: t.GroupID})
			}
			p.RenditionGroups[i].Renditions = append(p.RenditionGroups[i].Renditions, t.Rendition)
		case TagSessionData:
			p.SessionData = append(p.SessionData, t.SessionData)
		case TagSessionKey:
			p.SessionKeys = append(p.SessionKeys, t.Key)
		case TagContentSteering:
			cs := t.ContentSteering
			p.ContentSteering = &cs
		case TagUnknown:
			if pending != nil {
				pending.ExtraTags = append(pending.ExtraTags, t.ExtTag)
			} else {
				p.ExtraTags = append(p.ExtraTags, t.ExtTag)
			}
		}
	}
	if pending != nil || skipURI {
		return nil, unassociatedVariant(pendingLine)
	}

	if err := d.attachRenditionsToVariants(p, variantLines); err != nil {
		return nil, err
	}
	return p, nil
}

// attachRenditionsToVariants copies the renditions of the groups a variant
// references into its Alternatives.
func (d *decoder) attachRenditionsToVariants(p *MultivariantPlaylist, lines []int) error {
	for i := range p.Variants {
		variant := &p.Variants[i]
		refs := []groupKey{
			{RenditionVideo, variant.Video},
			{RenditionAudio, variant.Audio},
			{RenditionSubtitles, variant.Subtitles},
			{RenditionCaptions, variant.Captions},
		}
		for _, ref := range refs {
			if ref.groupID == "" || ref.typ == RenditionCaptions && ref.groupID == "NONE" {
				continue
			}
			g, ok := p.Group(ref.typ, ref.groupID)
			if !ok {
				missing := fmt.Errorf("%s group %q: %w", ref.typ, ref.groupID, ErrUnknownRenditionGroup)
				if err := d.report(lines[i], SeverityError, missing); err != nil {
					return err
				}
				continue
			}
			variant.Alternatives = append(variant.Alternatives, g.Renditions...)
		}
	}
	return nil
}
