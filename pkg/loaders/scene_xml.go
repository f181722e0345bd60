package loaders

import "encoding/xml"

// The XML layout of a scene file. Optional elements are pointers so that
// their defaults can be told apart from explicit values.

type xmlScene struct {
	XMLName                 xml.Name           `xml:"Scene"`
	BackgroundColor         *string            `xml:"BackgroundColor"`
	ShadowRayEpsilon        *string            `xml:"ShadowRayEpsilon"`
	IntersectionTestEpsilon *string            `xml:"IntersectionTestEpsilon"`
	MaxRecursionDepth       *string            `xml:"MaxRecursionDepth"`
	Cameras                 []xmlCamera        `xml:"Cameras>Camera"`
	Lights                  xmlLights          `xml:"Lights"`
	BRDFs                   xmlBRDFs           `xml:"BRDFs"`
	Materials               []xmlMaterial      `xml:"Materials>Material"`
	Textures                xmlTextures        `xml:"Textures"`
	Transformations         xmlTransformations `xml:"Transformations"`
	VertexData              string             `xml:"VertexData"`
	TexCoordData            string             `xml:"TexCoordData"`
	Objects                 xmlObjects         `xml:"Objects"`
}

type xmlCamera struct {
	Type            string      `xml:"type,attr"`
	Handedness      string      `xml:"handedness,attr"`
	Position        string      `xml:"Position"`
	Gaze            *string     `xml:"Gaze"`
	GazePoint       *string     `xml:"GazePoint"`
	Up              string      `xml:"Up"`
	NearPlane       string      `xml:"NearPlane"`
	FovY            string      `xml:"FovY"`
	NearDistance    string      `xml:"NearDistance"`
	FocusDistance   *string     `xml:"FocusDistance"`
	ApertureSize    *string     `xml:"ApertureSize"`
	ImageResolution string      `xml:"ImageResolution"`
	NumSamples      *string     `xml:"NumSamples"`
	ImageName       string      `xml:"ImageName"`
	Renderer        string      `xml:"Renderer"`
	RendererParams  string      `xml:"RendererParams"`
	Tonemap         *xmlTonemap `xml:"Tonemap"`
}

type xmlTonemap struct {
	TMO        *string `xml:"TMO"`
	TMOOptions string  `xml:"TMOOptions"`
	Saturation string  `xml:"Saturation"`
	Gamma      string  `xml:"Gamma"`
}

type xmlLights struct {
	AmbientLight              *string                        `xml:"AmbientLight"`
	PointLights               []xmlPointLight                `xml:"PointLight"`
	AreaLights                []xmlAreaLight                 `xml:"AreaLight"`
	DirectionalLights         []xmlDirectionalLight          `xml:"DirectionalLight"`
	SpotLights                []xmlSpotLight                 `xml:"SpotLight"`
	SphericalDirectionalLight []xmlSphericalDirectionalLight `xml:"SphericalDirectionalLight"`
}

type xmlPointLight struct {
	Position  string `xml:"Position"`
	Intensity string `xml:"Intensity"`
}

type xmlAreaLight struct {
	Position string `xml:"Position"`
	Normal   string `xml:"Normal"`
	Size     string `xml:"Size"`
	Radiance string `xml:"Radiance"`
}

type xmlDirectionalLight struct {
	Direction string `xml:"Direction"`
	Radiance  string `xml:"Radiance"`
}

type xmlSpotLight struct {
	Position      string `xml:"Position"`
	Direction     string `xml:"Direction"`
	Intensity     string `xml:"Intensity"`
	CoverageAngle string `xml:"CoverageAngle"`
	FalloffAngle  string `xml:"FalloffAngle"`
}

type xmlSphericalDirectionalLight struct {
	ImageID string `xml:"ImageId"`
}

// xmlBRDFs keeps the BRDFs of all kinds in document order
type xmlBRDFs struct {
	Items []xmlBRDF `xml:",any"`
}

type xmlBRDF struct {
	XMLName    xml.Name
	Normalized string `xml:"normalized,attr"`
	KdFresnel  string `xml:"kdfresnel,attr"`
	Exponent   string `xml:"Exponent"`
}

type xmlMaterial struct {
	Type                  string  `xml:"type,attr"`
	Degamma               string  `xml:"degamma,attr"`
	BRDF                  string  `xml:"BRDF,attr"`
	AmbientReflectance    *string `xml:"AmbientReflectance"`
	DiffuseReflectance    *string `xml:"DiffuseReflectance"`
	SpecularReflectance   *string `xml:"SpecularReflectance"`
	MirrorReflectance     *string `xml:"MirrorReflectance"`
	PhongExponent         *string `xml:"PhongExponent"`
	AbsorptionCoefficient *string `xml:"AbsorptionCoefficient"`
	RefractionIndex       *string `xml:"RefractionIndex"`
	AbsorptionIndex       *string `xml:"AbsorptionIndex"`
	Roughness             *string `xml:"Roughness"`
}

type xmlTextures struct {
	Images      []string        `xml:"Images>Image"`
	TextureMaps []xmlTextureMap `xml:"TextureMap"`
}

type xmlTextureMap struct {
	Type            string  `xml:"type,attr"`
	ImageID         string  `xml:"ImageId"`
	DecalMode       string  `xml:"DecalMode"`
	Interpolation   *string `xml:"Interpolation"`
	Normalizer      *string `xml:"Normalizer"`
	BumpFactor      *string `xml:"BumpFactor"`
	NoiseConversion string  `xml:"NoiseConversion"`
	NoiseScale      *string `xml:"NoiseScale"`
	BlackColor      *string `xml:"BlackColor"`
	WhiteColor      *string `xml:"WhiteColor"`
	Scale           *string `xml:"Scale"`
	Offset          *string `xml:"Offset"`
}

type xmlTransformations struct {
	Translations []string `xml:"Translation"`
	Scalings     []string `xml:"Scaling"`
	Rotations    []string `xml:"Rotation"`
	Composites   []string `xml:"Composite"`
}

type xmlObjects struct {
	Meshes        []xmlMesh         `xml:"Mesh"`
	MeshInstances []xmlMeshInstance `xml:"MeshInstance"`
	LightMeshes   []xmlMesh         `xml:"LightMesh"`
	Triangles     []xmlTriangle     `xml:"Triangle"`
	Spheres       []xmlSphere       `xml:"Sphere"`
	LightSpheres  []xmlSphere       `xml:"LightSphere"`
}

// xmlPlaced holds the elements every object accepts
type xmlPlaced struct {
	Material        string  `xml:"Material"`
	Textures        *string `xml:"Textures"`
	Transformations *string `xml:"Transformations"`
	MotionBlur      *string `xml:"MotionBlur"`
}

type xmlMesh struct {
	xmlPlaced
	ShadingMode string   `xml:"shadingMode,attr"`
	Radiance    string   `xml:"Radiance"`
	Faces       xmlFaces `xml:"Faces"`
}

type xmlFaces struct {
	VertexOffset  string `xml:"vertexOffset,attr"`
	TextureOffset string `xml:"textureOffset,attr"`
	PlyFile       string `xml:"plyFile,attr"`
	Indices       string `xml:",chardata"`
}

type xmlMeshInstance struct {
	xmlPlaced
	BaseMeshID     string `xml:"baseMeshId,attr"`
	ResetTransform string `xml:"resetTransform,attr"`
}

type xmlTriangle struct {
	xmlPlaced
	Indices string `xml:"Indices"`
}

type xmlSphere struct {
	xmlPlaced
	Radiance string `xml:"Radiance"`
	Center   string `xml:"Center"`
	Radius   string `xml:"Radius"`
}
