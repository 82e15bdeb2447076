package pdfdoc

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"github.com/gardar/pdfoverlay/pkg/overlay"
)

// pageMeta is the metadata read once per source page.
type pageMeta struct {
	rect     overlay.Rect
	rotation int
	images   []overlay.ImageRef
}

// readPageMetas walks every page dict collecting the point-space rect,
// rotation, and embedded image inventory.
func readPageMetas(ctx *model.Context) ([]pageMeta, error) {
	metas := make([]pageMeta, 0, ctx.PageCount)
	for pageNr := 1; pageNr <= ctx.PageCount; pageNr++ {
		pageDict, _, inhAttrs, err := ctx.PageDict(pageNr, false)
		if err != nil {
			return nil, fmt.Errorf("page %d dict: %w", pageNr, err)
		}

		meta := pageMeta{}
		if inhAttrs != nil && inhAttrs.MediaBox != nil {
			mb := inhAttrs.MediaBox
			meta.rect = overlay.NewRect(mb.LL.X, mb.LL.Y, mb.UR.X, mb.UR.Y)
			meta.rotation = inhAttrs.Rotate
		}

		meta.images = pageImages(ctx, pageDict, pageNr, meta.rect)
		metas = append(metas, meta)
	}
	return metas, nil
}

// pageImages inventories the page's image XObjects: object reference,
// intrinsic pixel dimensions from the stream dict, and the rendered
// rectangle recovered from the content stream. Images drawn through
// nested form XObjects fall back to the full page rect.
func pageImages(ctx *model.Context, pageDict types.Dict, pageNr int, pageRect overlay.Rect) []overlay.ImageRef {
	resObj, found := pageDict.Find("Resources")
	if !found {
		return nil
	}
	resDict, err := ctx.DereferenceDict(resObj)
	if err != nil || resDict == nil {
		return nil
	}
	xObj, found := resDict.Find("XObject")
	if !found {
		return nil
	}
	xDict, err := ctx.DereferenceDict(xObj)
	if err != nil || xDict == nil {
		return nil
	}

	placements := imagePlacements(ctx, pageNr)

	var images []overlay.ImageRef
	for name, obj := range xDict {
		ref, ok := obj.(types.IndirectRef)
		if !ok {
			continue
		}
		sd, _, err := ctx.DereferenceStreamDict(obj)
		if err != nil || sd == nil {
			continue
		}
		subtype, found := sd.Find("Subtype")
		if !found {
			continue
		}
		if n, ok := subtype.(types.Name); !ok || n != "Image" {
			continue
		}

		img := overlay.ImageRef{
			Ref:  strconv.Itoa(ref.ObjectNumber.Value()),
			Rect: pageRect,
		}
		if w := sd.IntEntry("Width"); w != nil {
			img.WidthPx = float64(*w)
		}
		if h := sd.IntEntry("Height"); h != nil {
			img.HeightPx = float64(*h)
		}
		if rect, ok := placements[name]; ok {
			img.Rect = rect
		}
		images = append(images, img)
	}
	return images
}

// imagePlacements scans a page content stream for "cm" matrices followed
// by XObject "Do" operators and returns the rendered rectangle per
// resource name. Scanned pages draw their image at the top level as
// "q w 0 0 h x y cm /Name Do Q", which this covers; compounded CTMs from
// nested graphics states are out of scope and such names simply stay
// absent from the result.
func imagePlacements(ctx *model.Context, pageNr int) map[string]overlay.Rect {
	r, err := pdfcpu.ExtractPageContent(ctx, pageNr)
	if err != nil || r == nil {
		return nil
	}
	data, err := io.ReadAll(r)
	if err != nil || len(data) == 0 {
		return nil
	}
	return scanPlacements(data)
}

func scanPlacements(data []byte) map[string]overlay.Rect {
	placements := make(map[string]overlay.Rect)
	tokens := strings.Fields(string(data))
	var matrix [6]float64
	haveMatrix := false

	for i, tok := range tokens {
		switch tok {
		case "cm":
			if i >= 6 {
				ok := true
				for j := 0; j < 6; j++ {
					v, err := strconv.ParseFloat(tokens[i-6+j], 64)
					if err != nil {
						ok = false
						break
					}
					matrix[j] = v
				}
				haveMatrix = ok
			}
		case "Do":
			if !haveMatrix || i == 0 || !strings.HasPrefix(tokens[i-1], "/") {
				continue
			}
			name := strings.TrimPrefix(tokens[i-1], "/")
			if _, exists := placements[name]; exists {
				continue
			}
			a, d := matrix[0], matrix[3]
			e, f := matrix[4], matrix[5]
			placements[name] = overlay.NewRect(
				min(e, e+a), min(f, f+d),
				max(e, e+a), max(f, f+d),
			)
		}
	}
	return placements
}
