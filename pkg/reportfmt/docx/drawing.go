package docx

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg" // register decoder for DecodeConfig
	_ "image/png"  // register decoder for DecodeConfig
)

// Extent is a size in EMU.
type Extent struct {
	CX int64 `xml:"cx,attr"`
	CY int64 `xml:"cy,attr"`
}

// DocPr is wp:docPr or pic:cNvPr.
type DocPr struct {
	ID   int    `xml:"id,attr"`
	Name string `xml:"name,attr"`
}

// Blip references an image part by relationship ID.
type Blip struct {
	Embed string `xml:"r:embed,attr"`
}

type picNvPicPr struct {
	CNvPr    DocPr    `xml:"pic:cNvPr"`
	CNvPicPr struct{} `xml:"pic:cNvPicPr"`
}

type aStretch struct {
	FillRect struct{} `xml:"a:fillRect"`
}

type picBlipFill struct {
	Blip    Blip     `xml:"a:blip"`
	Stretch aStretch `xml:"a:stretch"`
}

type aOffset struct {
	X int64 `xml:"x,attr"`
	Y int64 `xml:"y,attr"`
}

type aXfrm struct {
	Off aOffset `xml:"a:off"`
	Ext Extent  `xml:"a:ext"`
}

type aPrstGeom struct {
	Prst  string   `xml:"prst,attr"`
	AvLst struct{} `xml:"a:avLst"`
}

type picSpPr struct {
	Xfrm     aXfrm     `xml:"a:xfrm"`
	PrstGeom aPrstGeom `xml:"a:prstGeom"`
}

// Picture is pic:pic.
type Picture struct {
	NvPicPr  picNvPicPr  `xml:"pic:nvPicPr"`
	BlipFill picBlipFill `xml:"pic:blipFill"`
	SpPr     picSpPr     `xml:"pic:spPr"`
}

// GraphicData is a:graphicData.
type GraphicData struct {
	URI string  `xml:"uri,attr"`
	Pic Picture `xml:"pic:pic"`
}

// Graphic is a:graphic.
type Graphic struct {
	Data GraphicData `xml:"a:graphicData"`
}

// Inline is wp:inline.
type Inline struct {
	DistT   int     `xml:"distT,attr"`
	DistB   int     `xml:"distB,attr"`
	DistL   int     `xml:"distL,attr"`
	DistR   int     `xml:"distR,attr"`
	Extent  Extent  `xml:"wp:extent"`
	DocPr   DocPr   `xml:"wp:docPr"`
	Graphic Graphic `xml:"a:graphic"`
}

// Drawing is w:drawing holding one inline picture.
type Drawing struct {
	Inline Inline `xml:"wp:inline"`
}

type media struct {
	name string
	data []byte
}

// ImageSize decodes the pixel size and format ("png" or "jpeg") of an image.
func ImageSize(data []byte) (width, height int, format string, err error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0, "", fmt.Errorf("failed to decode image: %w", err)
	}
	if cfg.Width == 0 || cfg.Height == 0 {
		return 0, 0, "", fmt.Errorf("image has zero size")
	}
	return cfg.Width, cfg.Height, format, nil
}

// AddPicture stores an image part and returns a run holding it inline,
// scaled to widthEMU with the aspect ratio kept.
func (d *Document) AddPicture(data []byte, widthEMU int64) (*Run, error) {
	w, h, format, err := ImageSize(data)
	if err != nil {
		return nil, err
	}
	ext := "png"
	if format == "jpeg" {
		ext = "jpeg"
	} else if format != "png" {
		return nil, fmt.Errorf("unsupported image format %q", format)
	}
	if widthEMU <= 0 {
		widthEMU = int64(w) * EMUPerPixel
	}
	heightEMU := widthEMU * int64(h) / int64(w)

	d.pictures++
	name := fmt.Sprintf("image%d.%s", d.pictures, ext)
	relID := fmt.Sprintf("rId%d", imageRelBase+d.pictures)
	d.media = append(d.media, media{name: name, data: data})

	extent := Extent{CX: widthEMU, CY: heightEMU}
	drawing := &Drawing{Inline: Inline{
		Extent: extent,
		DocPr:  DocPr{ID: d.pictures, Name: fmt.Sprintf("Picture %d", d.pictures)},
		Graphic: Graphic{Data: GraphicData{
			URI: NameSpacePicture,
			Pic: Picture{
				NvPicPr:  picNvPicPr{CNvPr: DocPr{ID: 0, Name: name}},
				BlipFill: picBlipFill{Blip: Blip{Embed: relID}},
				SpPr: picSpPr{
					Xfrm:     aXfrm{Ext: extent},
					PrstGeom: aPrstGeom{Prst: "rect"},
				},
			},
		}},
	}}
	return &Run{Drawing: drawing}, nil
}
