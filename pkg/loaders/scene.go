package loaders

import (
	"encoding/xml"
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/misrayazgan/RayTracer/pkg/core"
	"github.com/misrayazgan/RayTracer/pkg/geometry"
	"github.com/misrayazgan/RayTracer/pkg/lights"
	"github.com/misrayazgan/RayTracer/pkg/log"
	"github.com/misrayazgan/RayTracer/pkg/material"
	"github.com/misrayazgan/RayTracer/pkg/scene"
)

var logger = log.New("loader")

// SceneLoadError reports a scene file that could not be turned into a scene
type SceneLoadError struct {
	Path string
	Err  error
}

func (e *SceneLoadError) Error() string {
	return fmt.Sprintf("failed to load scene %s: %v", e.Path, e.Err)
}

func (e *SceneLoadError) Unwrap() error {
	return e.Err
}

// LoadScene reads an XML scene file and returns the built scene. Images and
// PLY files are resolved relative to the scene file.
func LoadScene(path string) (*scene.Scene, error) {
	start := time.Now()

	file, err := os.Open(path)
	if err != nil {
		return nil, &SceneLoadError{Path: path, Err: err}
	}
	defer file.Close()

	s, err := ReadScene(file, filepath.Dir(path))
	if err != nil {
		return nil, &SceneLoadError{Path: path, Err: err}
	}

	logger.Infof("loaded %s in %v: %d cameras, %d lights, %d objects (%d primitives)",
		path, time.Since(start), len(s.Cameras), len(s.Lights), len(s.Objects), s.PrimitiveCount())
	return s, nil
}

// ReadScene decodes a scene document. dir is where relative image and PLY
// paths are looked up.
func ReadScene(r io.Reader, dir string) (*scene.Scene, error) {
	var doc xmlScene
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("invalid scene XML: %w", err)
	}

	b := &sceneBuilder{
		doc:    &doc,
		dir:    dir,
		scene:  scene.New(),
		images: make(map[int]*ImageData),
	}
	if err := b.build(); err != nil {
		return nil, err
	}
	return b.scene, nil
}

// sceneBuilder turns the decoded document into scene tables. Tables are
// filled in dependency order: textures before objects, vertices before
// triangles.
type sceneBuilder struct {
	doc   *xmlScene
	dir   string
	scene *scene.Scene

	images     map[int]*ImageData // decoded images by 0-based image id
	transforms transformTables
}

func (b *sceneBuilder) build() error {
	steps := []struct {
		name string
		run  func() error
	}{
		{"globals", b.buildGlobals},
		{"cameras", b.buildCameras},
		{"lights", b.buildLights},
		{"brdfs", b.buildBRDFs},
		{"materials", b.buildMaterials},
		{"textures", b.buildTextures},
		{"environment", b.buildEnvironment},
		{"transformations", b.buildTransformations},
		{"vertices", b.buildVertices},
		{"meshes", b.buildMeshes},
		{"mesh instances", b.buildMeshInstances},
		{"light meshes", b.buildLightMeshes},
		{"triangles", b.buildTriangles},
		{"spheres", b.buildSpheres},
	}

	for _, step := range steps {
		if err := step.run(); err != nil {
			return fmt.Errorf("%s: %w", step.name, err)
		}
	}

	if len(b.scene.Cameras) == 0 {
		logger.Warningf("scene has no cameras, nothing will be rendered")
	}

	b.scene.Build()
	return nil
}

func (b *sceneBuilder) buildGlobals() error {
	doc, s := b.doc, b.scene
	var err error

	if s.BackgroundColor, err = optionalVec3(doc.BackgroundColor, core.Vec3{}); err != nil {
		return fmt.Errorf("BackgroundColor: %w", err)
	}
	if s.ShadowRayEpsilon, err = optionalFloat(doc.ShadowRayEpsilon, 1e-3); err != nil {
		return fmt.Errorf("ShadowRayEpsilon: %w", err)
	}
	if s.IntersectionEpsilon, err = optionalFloat(doc.IntersectionTestEpsilon, 1e-6); err != nil {
		return fmt.Errorf("IntersectionTestEpsilon: %w", err)
	}
	if s.MaxRecursionDepth, err = optionalInt(doc.MaxRecursionDepth, 0); err != nil {
		return fmt.Errorf("MaxRecursionDepth: %w", err)
	}
	if s.AmbientLight, err = optionalVec3(doc.Lights.AmbientLight, core.Vec3{}); err != nil {
		return fmt.Errorf("AmbientLight: %w", err)
	}
	return nil
}

func (b *sceneBuilder) buildCameras() error {
	for i, xc := range b.doc.Cameras {
		camera, err := parseCamera(xc)
		if err != nil {
			return fmt.Errorf("camera %d: %w", i+1, err)
		}
		b.scene.Cameras = append(b.scene.Cameras, camera)
	}
	return nil
}

func parseCamera(xc xmlCamera) (*scene.Camera, error) {
	position, err := parseVec3(xc.Position)
	if err != nil {
		return nil, fmt.Errorf("Position: %w", err)
	}
	up, err := parseVec3(xc.Up)
	if err != nil {
		return nil, fmt.Errorf("Up: %w", err)
	}
	distance, err := parseFloat(xc.NearDistance)
	if err != nil {
		return nil, fmt.Errorf("NearDistance: %w", err)
	}
	resolution, err := parseInts(xc.ImageResolution)
	if err != nil || len(resolution) != 2 || resolution[0] <= 0 || resolution[1] <= 0 {
		return nil, fmt.Errorf("ImageResolution: invalid %q", strings.TrimSpace(xc.ImageResolution))
	}
	width, height := resolution[0], resolution[1]

	var camera *scene.Camera
	switch xc.Type {
	case "":
		if xc.Gaze == nil {
			return nil, fmt.Errorf("Gaze: missing")
		}
		gaze, err := parseVec3(*xc.Gaze)
		if err != nil {
			return nil, fmt.Errorf("Gaze: %w", err)
		}
		plane, err := parseFixed(xc.NearPlane, 4)
		if err != nil {
			return nil, fmt.Errorf("NearPlane: %w", err)
		}
		camera = scene.NewCamera(position, gaze, up, [4]float64{plane[0], plane[1], plane[2], plane[3]}, distance, width, height)
	case "lookAt":
		var gazePoint core.Vec3
		switch {
		case xc.GazePoint != nil:
			if gazePoint, err = parseVec3(*xc.GazePoint); err != nil {
				return nil, fmt.Errorf("GazePoint: %w", err)
			}
		case xc.Gaze != nil:
			gaze, err := parseVec3(*xc.Gaze)
			if err != nil {
				return nil, fmt.Errorf("Gaze: %w", err)
			}
			gazePoint = position.Add(gaze)
		default:
			return nil, fmt.Errorf("GazePoint: missing")
		}
		fovY, err := parseFloat(xc.FovY)
		if err != nil {
			return nil, fmt.Errorf("FovY: %w", err)
		}
		camera = scene.NewLookAtCamera(position, gazePoint, up, fovY, distance, width, height)
	default:
		return nil, fmt.Errorf("unknown camera type %q", xc.Type)
	}

	if camera.FocusDistance, err = optionalFloat(xc.FocusDistance, 0); err != nil {
		return nil, fmt.Errorf("FocusDistance: %w", err)
	}
	if camera.ApertureSize, err = optionalFloat(xc.ApertureSize, 0); err != nil {
		return nil, fmt.Errorf("ApertureSize: %w", err)
	}
	if camera.Samples, err = optionalInt(xc.NumSamples, 1); err != nil {
		return nil, fmt.Errorf("NumSamples: %w", err)
	}
	camera.ImageName = strings.TrimSpace(xc.ImageName)
	if camera.ImageName == "" {
		return nil, fmt.Errorf("ImageName: missing")
	}

	if camera.Mode, err = scene.ParseRenderMode(strings.TrimSpace(xc.Renderer)); err != nil {
		return nil, err
	}
	for _, param := range strings.Fields(xc.RendererParams) {
		switch param {
		case "NextEventEstimation":
			camera.Params.NextEventEstimation = true
		case "RussianRoulette":
			camera.Params.RussianRoulette = true
		case "ImportanceSampling":
			camera.Params.ImportanceSampling = true
		default:
			logger.Warningf("ignoring unknown renderer parameter %q", param)
		}
	}

	if xc.Tonemap != nil {
		if camera.Tonemap, err = parseTonemap(*xc.Tonemap); err != nil {
			return nil, fmt.Errorf("Tonemap: %w", err)
		}
	}

	camera.LeftHanded = xc.Handedness == "left"
	camera.Setup()
	return camera, nil
}

func parseTonemap(xt xmlTonemap) (*scene.Tonemap, error) {
	tmo := "Photographic"
	if xt.TMO != nil {
		tmo = strings.TrimSpace(*xt.TMO)
	}

	options, err := parseFixed(xt.TMOOptions, 2)
	if err != nil {
		return nil, fmt.Errorf("TMOOptions: %w", err)
	}
	saturation, err := parseFloat(xt.Saturation)
	if err != nil {
		return nil, fmt.Errorf("Saturation: %w", err)
	}

	gamma := 2.2
	if g := strings.TrimSpace(xt.Gamma); g != "sRGB" {
		if gamma, err = parseFloat(g); err != nil {
			return nil, fmt.Errorf("Gamma: %w", err)
		}
	}

	return &scene.Tonemap{
		Operator:   scene.ParseTonemapOperator(tmo),
		Key:        options[0],
		Burn:       options[1],
		Saturation: saturation,
		Gamma:      gamma,
	}, nil
}

func (b *sceneBuilder) buildLights() error {
	xl := b.doc.Lights

	for i, p := range xl.PointLights {
		position, err := parseVec3(p.Position)
		if err != nil {
			return fmt.Errorf("point light %d: Position: %w", i+1, err)
		}
		intensity, err := parseVec3(p.Intensity)
		if err != nil {
			return fmt.Errorf("point light %d: Intensity: %w", i+1, err)
		}
		b.scene.Lights = append(b.scene.Lights, lights.NewPointLight(position, intensity))
	}

	for i, a := range xl.AreaLights {
		position, err := parseVec3(a.Position)
		if err != nil {
			return fmt.Errorf("area light %d: Position: %w", i+1, err)
		}
		normal, err := parseVec3(a.Normal)
		if err != nil {
			return fmt.Errorf("area light %d: Normal: %w", i+1, err)
		}
		size, err := parseFloat(a.Size)
		if err != nil {
			return fmt.Errorf("area light %d: Size: %w", i+1, err)
		}
		radiance, err := parseVec3(a.Radiance)
		if err != nil {
			return fmt.Errorf("area light %d: Radiance: %w", i+1, err)
		}
		b.scene.Lights = append(b.scene.Lights, lights.NewAreaLight(position, normal.Normalize(), size, radiance))
	}

	for i, d := range xl.DirectionalLights {
		direction, err := parseVec3(d.Direction)
		if err != nil {
			return fmt.Errorf("directional light %d: Direction: %w", i+1, err)
		}
		radiance, err := parseVec3(d.Radiance)
		if err != nil {
			return fmt.Errorf("directional light %d: Radiance: %w", i+1, err)
		}
		b.scene.Lights = append(b.scene.Lights, lights.NewDirectionalLight(direction, radiance))
	}

	for i, sp := range xl.SpotLights {
		position, err := parseVec3(sp.Position)
		if err != nil {
			return fmt.Errorf("spot light %d: Position: %w", i+1, err)
		}
		direction, err := parseVec3(sp.Direction)
		if err != nil {
			return fmt.Errorf("spot light %d: Direction: %w", i+1, err)
		}
		intensity, err := parseVec3(sp.Intensity)
		if err != nil {
			return fmt.Errorf("spot light %d: Intensity: %w", i+1, err)
		}
		coverage, err := parseFloat(sp.CoverageAngle)
		if err != nil {
			return fmt.Errorf("spot light %d: CoverageAngle: %w", i+1, err)
		}
		falloff, err := parseFloat(sp.FalloffAngle)
		if err != nil {
			return fmt.Errorf("spot light %d: FalloffAngle: %w", i+1, err)
		}
		b.scene.Lights = append(b.scene.Lights, lights.NewSpotLight(position, direction, intensity, coverage, falloff))
	}

	return nil
}

func (b *sceneBuilder) buildBRDFs() error {
	for i, xb := range b.doc.BRDFs.Items {
		exponent, err := parseFloat(xb.Exponent)
		if err != nil {
			return fmt.Errorf("brdf %d: Exponent: %w", i+1, err)
		}
		normalized, err := parseBool(xb.Normalized, false)
		if err != nil {
			return fmt.Errorf("brdf %d: %w", i+1, err)
		}
		kdFresnel, err := parseBool(xb.KdFresnel, false)
		if err != nil {
			return fmt.Errorf("brdf %d: %w", i+1, err)
		}

		var brdf material.BRDF
		switch xb.XMLName.Local {
		case "OriginalPhong":
			brdf = material.Phong{Exponent: exponent}
		case "OriginalBlinnPhong":
			brdf = material.BlinnPhong{Exponent: exponent}
		case "ModifiedPhong":
			brdf = material.ModifiedPhong{Exponent: exponent, Normalized: normalized}
		case "ModifiedBlinnPhong":
			brdf = material.ModifiedBlinnPhong{Exponent: exponent, Normalized: normalized}
		case "TorranceSparrow":
			brdf = material.TorranceSparrow{Exponent: exponent, KdFresnel: kdFresnel}
		default:
			return fmt.Errorf("brdf %d: unknown BRDF %q", i+1, xb.XMLName.Local)
		}
		b.scene.BRDFs = append(b.scene.BRDFs, brdf)
	}
	return nil
}

func (b *sceneBuilder) buildMaterials() error {
	for i, xm := range b.doc.Materials {
		m, err := b.parseMaterial(xm)
		if err != nil {
			return fmt.Errorf("material %d: %w", i+1, err)
		}
		b.scene.Materials = append(b.scene.Materials, m)
	}
	return nil
}

func (b *sceneBuilder) parseMaterial(xm xmlMaterial) (material.Material, error) {
	m := material.New()
	var err error

	if m.Type, err = material.ParseType(strings.TrimSpace(xm.Type)); err != nil {
		return m, err
	}
	if m.Degamma, err = parseBool(xm.Degamma, false); err != nil {
		return m, fmt.Errorf("degamma: %w", err)
	}
	if id := strings.TrimSpace(xm.BRDF); id != "" {
		brdfID, err := parseInt(id)
		if err != nil {
			return m, fmt.Errorf("BRDF: %w", err)
		}
		if m.BRDF, err = index(brdfID, len(b.scene.BRDFs), "brdf"); err != nil {
			return m, err
		}
	}

	vectors := []struct {
		name  string
		value *string
		dst   *core.Vec3
	}{
		{"AmbientReflectance", xm.AmbientReflectance, &m.Ambient},
		{"DiffuseReflectance", xm.DiffuseReflectance, &m.Diffuse},
		{"SpecularReflectance", xm.SpecularReflectance, &m.Specular},
		{"MirrorReflectance", xm.MirrorReflectance, &m.Mirror},
		{"AbsorptionCoefficient", xm.AbsorptionCoefficient, &m.Absorption},
	}
	for _, v := range vectors {
		if *v.dst, err = optionalVec3(v.value, *v.dst); err != nil {
			return m, fmt.Errorf("%s: %w", v.name, err)
		}
	}

	scalars := []struct {
		name  string
		value *string
		dst   *float64
	}{
		{"PhongExponent", xm.PhongExponent, &m.PhongExponent},
		{"RefractionIndex", xm.RefractionIndex, &m.RefractionIndex},
		{"AbsorptionIndex", xm.AbsorptionIndex, &m.AbsorptionIndex},
		{"Roughness", xm.Roughness, &m.Roughness},
	}
	for _, v := range scalars {
		if *v.dst, err = optionalFloat(v.value, *v.dst); err != nil {
			return m, fmt.Errorf("%s: %w", v.name, err)
		}
	}

	m.Finalize()
	return m, nil
}

// image decodes the image with the given 0-based id once and shares it
func (b *sceneBuilder) image(id int) (*ImageData, error) {
	if data, ok := b.images[id]; ok {
		return data, nil
	}
	path := strings.TrimSpace(b.doc.Textures.Images[id])
	if !filepath.IsAbs(path) {
		path = filepath.Join(b.dir, path)
	}
	data, err := LoadImage(path)
	if err != nil {
		return nil, err
	}
	b.images[id] = data
	return data, nil
}

func (b *sceneBuilder) imageID(text string) (int, error) {
	id, err := parseInt(text)
	if err != nil {
		return 0, fmt.Errorf("ImageId: %w", err)
	}
	return index(id, len(b.doc.Textures.Images), "image")
}

func (b *sceneBuilder) buildTextures() error {
	for i, xt := range b.doc.Textures.TextureMaps {
		texture, err := b.parseTexture(i, xt)
		if err != nil {
			return fmt.Errorf("texture %d: %w", i+1, err)
		}
		b.scene.Textures = append(b.scene.Textures, texture)
	}
	return nil
}

func (b *sceneBuilder) parseTexture(i int, xt xmlTextureMap) (core.Texture, error) {
	mode, err := material.ParseDecalMode(strings.TrimSpace(xt.DecalMode))
	if err != nil {
		return nil, err
	}
	bumpFactor, err := optionalFloat(xt.BumpFactor, 1)
	if err != nil {
		return nil, fmt.Errorf("BumpFactor: %w", err)
	}

	switch xt.Type {
	case "image":
		id, err := b.imageID(xt.ImageID)
		if err != nil {
			return nil, err
		}
		data, err := b.image(id)
		if err != nil {
			return nil, err
		}

		texture := data.Texture()
		texture.Mode = mode
		texture.BumpFactor = bumpFactor
		interpolation := "bilinear"
		if xt.Interpolation != nil {
			interpolation = strings.TrimSpace(*xt.Interpolation)
		}
		if texture.Interpolation, err = material.ParseInterpolation(interpolation); err != nil {
			return nil, err
		}
		if texture.Normalizer, err = optionalFloat(xt.Normalizer, texture.Normalizer); err != nil {
			return nil, fmt.Errorf("Normalizer: %w", err)
		}

		if mode == core.DecalReplaceBackground {
			b.scene.BackgroundTexture = texture
		}
		return texture, nil

	case "perlin":
		conversion, err := material.ParseNoiseConversion(strings.TrimSpace(xt.NoiseConversion))
		if err != nil {
			return nil, err
		}
		scale, err := optionalFloat(xt.NoiseScale, 1)
		if err != nil {
			return nil, fmt.Errorf("NoiseScale: %w", err)
		}
		// a fixed seed per texture keeps renders reproducible
		random := rand.New(rand.NewSource(int64(i + 1)))
		return material.NewPerlinTexture(random, conversion, scale, bumpFactor, mode), nil

	case "checkerboard":
		black, err := optionalVec3(xt.BlackColor, core.Vec3{})
		if err != nil {
			return nil, fmt.Errorf("BlackColor: %w", err)
		}
		white, err := optionalVec3(xt.WhiteColor, core.NewVec3(255, 255, 255))
		if err != nil {
			return nil, fmt.Errorf("WhiteColor: %w", err)
		}
		scale, err := optionalFloat(xt.Scale, 1)
		if err != nil {
			return nil, fmt.Errorf("Scale: %w", err)
		}
		offset, err := optionalFloat(xt.Offset, 0.01)
		if err != nil {
			return nil, fmt.Errorf("Offset: %w", err)
		}
		return material.NewCheckerboardTexture(black, white, scale, offset, mode), nil
	}

	return nil, fmt.Errorf("unknown texture type %q", xt.Type)
}

// buildEnvironment adds the spherical directional lights. LDR maps are
// normalized to [0,1]; OpenEXR maps hold radiance directly.
func (b *sceneBuilder) buildEnvironment() error {
	for i, xe := range b.doc.Lights.SphericalDirectionalLight {
		id, err := b.imageID(xe.ImageID)
		if err != nil {
			return fmt.Errorf("environment light %d: %w", i+1, err)
		}
		data, err := b.image(id)
		if err != nil {
			return fmt.Errorf("environment light %d: %w", i+1, err)
		}

		texture := data.Texture()
		texture.Interpolation = material.InterpolationBilinear

		light := lights.NewEnvironmentLight(texture)
		b.scene.Lights = append(b.scene.Lights, light)
		b.scene.Environment = light
	}
	return nil
}

// transformTables holds the named transformations objects refer to as
// t<i>, s<i>, r<i> and c<i>
type transformTables struct {
	translations []core.Transform
	scalings     []core.Transform
	rotations    []core.Transform
	composites   []core.Transform
}

func (b *sceneBuilder) buildTransformations() error {
	xt := b.doc.Transformations
	tt := &b.transforms

	for i, text := range xt.Translations {
		offset, err := parseVec3(text)
		if err != nil {
			return fmt.Errorf("translation %d: %w", i+1, err)
		}
		tt.translations = append(tt.translations, core.Translation(offset))
	}
	for i, text := range xt.Scalings {
		factors, err := parseVec3(text)
		if err != nil {
			return fmt.Errorf("scaling %d: %w", i+1, err)
		}
		tt.scalings = append(tt.scalings, core.Scaling(factors))
	}
	for i, text := range xt.Rotations {
		values, err := parseFixed(text, 4)
		if err != nil {
			return fmt.Errorf("rotation %d: %w", i+1, err)
		}
		tt.rotations = append(tt.rotations, core.Rotation(values[0], core.NewVec3(values[1], values[2], values[3])))
	}
	for i, text := range xt.Composites {
		values, err := parseFixed(text, 16)
		if err != nil {
			return fmt.Errorf("composite %d: %w", i+1, err)
		}
		// values are row major, mgl64 matrices column major
		var m mgl64.Mat4
		copy(m[:], values)
		tt.composites = append(tt.composites, core.NewTransform(m.Transpose()))
	}
	return nil
}

// compose applies the referenced transformations left to right
func (tt *transformTables) compose(refs string) (core.Transform, error) {
	result := core.IdentityTransform()
	for _, ref := range strings.Fields(refs) {
		if len(ref) < 2 {
			return result, fmt.Errorf("invalid transformation reference %q", ref)
		}
		id, err := parseInt(ref[1:])
		if err != nil {
			return result, fmt.Errorf("invalid transformation reference %q", ref)
		}

		var table []core.Transform
		var name string
		switch ref[0] {
		case 't':
			table, name = tt.translations, "translation"
		case 's':
			table, name = tt.scalings, "scaling"
		case 'r':
			table, name = tt.rotations, "rotation"
		case 'c':
			table, name = tt.composites, "composite"
		default:
			return result, fmt.Errorf("unknown transformation kind in %q", ref)
		}

		i, err := index(id, len(table), name)
		if err != nil {
			return result, err
		}
		result = result.Then(table[i])
	}
	return result, nil
}

func (b *sceneBuilder) buildVertices() error {
	positions, err := parseFloats(b.doc.VertexData)
	if err != nil {
		return fmt.Errorf("VertexData: %w", err)
	}
	if len(positions)%3 != 0 {
		return fmt.Errorf("VertexData: %d values is not a multiple of 3", len(positions))
	}
	coords, err := parseFloats(b.doc.TexCoordData)
	if err != nil {
		return fmt.Errorf("TexCoordData: %w", err)
	}
	if len(coords)%2 != 0 {
		return fmt.Errorf("TexCoordData: %d values is not a multiple of 2", len(coords))
	}

	vertices := make([]core.Vec3, 0, len(positions)/3)
	for i := 0; i < len(positions); i += 3 {
		vertices = append(vertices, core.NewVec3(positions[i], positions[i+1], positions[i+2]))
	}
	texCoords := make([]core.Vec2, 0, len(coords)/2)
	for i := 0; i < len(coords); i += 2 {
		texCoords = append(texCoords, core.NewVec2(coords[i], coords[i+1]))
	}

	b.scene.Vertices = geometry.NewVertexTable(vertices, texCoords)
	return nil
}

// surface resolves the material and texture references of an object
func (b *sceneBuilder) surface(xp xmlPlaced) (geometry.Surface, error) {
	var surface geometry.Surface

	materialID, err := parseInt(xp.Material)
	if err != nil {
		return surface, fmt.Errorf("Material: %w", err)
	}
	if surface.MaterialID, err = index(materialID, len(b.scene.Materials), "material"); err != nil {
		return surface, err
	}

	if xp.Textures == nil {
		return surface, nil
	}
	ids, err := parseInts(*xp.Textures)
	if err != nil || len(ids) == 0 || len(ids) > 2 {
		return surface, fmt.Errorf("Textures: invalid %q", strings.TrimSpace(*xp.Textures))
	}

	textures := make([]core.Texture, len(ids))
	for k, id := range ids {
		i, err := index(id, len(b.scene.Textures), "texture")
		if err != nil {
			return surface, err
		}
		textures[k] = b.scene.Textures[i]
	}

	switch {
	case len(textures) == 2:
		surface.Texture, surface.NormalTexture = textures[0], textures[1]
	case material.IsNormalTexture(textures[0]):
		surface.NormalTexture = textures[0]
	default:
		surface.Texture = textures[0]
	}
	return surface, nil
}

func (b *sceneBuilder) placement(xp xmlPlaced, base core.Transform) (geometry.Placement, error) {
	transform := base
	if xp.Transformations != nil {
		own, err := b.transforms.compose(*xp.Transformations)
		if err != nil {
			return geometry.Placement{}, fmt.Errorf("Transformations: %w", err)
		}
		transform = transform.Then(own)
	}
	motion, err := optionalVec3(xp.MotionBlur, core.Vec3{})
	if err != nil {
		return geometry.Placement{}, fmt.Errorf("MotionBlur: %w", err)
	}
	return geometry.NewPlacement(transform, motion), nil
}

func parseShadingMode(s string) (geometry.ShadingMode, error) {
	switch strings.TrimSpace(s) {
	case "", "flat":
		return geometry.ShadingFlat, nil
	case "smooth":
		return geometry.ShadingSmooth, nil
	}
	return geometry.ShadingFlat, fmt.Errorf("unknown shading mode %q", s)
}

// triangles creates the mesh faces, either inline 1-based indices shifted
// by vertexOffset or a PLY file appended to the vertex table
func (b *sceneBuilder) triangles(faces xmlFaces, surface geometry.Surface, shading geometry.ShadingMode) ([]*geometry.Triangle, error) {
	vertexOffset, err := optionalInt(attr(faces.VertexOffset), 0)
	if err != nil {
		return nil, fmt.Errorf("vertexOffset: %w", err)
	}
	textureOffset, err := optionalInt(attr(faces.TextureOffset), 0)
	if err != nil {
		return nil, fmt.Errorf("textureOffset: %w", err)
	}

	vt := b.scene.Vertices
	var indices []int

	if ply := strings.TrimSpace(faces.PlyFile); ply != "" {
		path := ply
		if !filepath.IsAbs(path) {
			path = filepath.Join(b.dir, path)
		}
		data, err := LoadPLY(path)
		if err != nil {
			return nil, err
		}
		textureOffset += len(vt.TexCoords)
		vertexOffset += vt.Append(data.Vertices, data.TexCoords)
		indices = data.Faces
	} else {
		if indices, err = parseInts(faces.Indices); err != nil {
			return nil, fmt.Errorf("Faces: %w", err)
		}
		if len(indices)%3 != 0 {
			return nil, fmt.Errorf("Faces: %d indices is not a multiple of 3", len(indices))
		}
		for k := range indices {
			indices[k]--
		}
	}

	inner := geometry.Surface{MaterialID: surface.MaterialID, Texture: surface.Texture, NormalTexture: surface.NormalTexture}
	triangles := make([]*geometry.Triangle, 0, len(indices)/3)
	for k := 0; k < len(indices); k += 3 {
		var v, uv [3]int
		for c := 0; c < 3; c++ {
			v[c] = vertexOffset + indices[k+c]
			uv[c] = textureOffset + indices[k+c]
			if v[c] < 0 || v[c] >= len(vt.Positions) {
				return nil, fmt.Errorf("face %d: vertex %d out of range [1,%d]", k/3+1, v[c]+1, len(vt.Positions))
			}
		}
		triangle := geometry.NewTriangle(vt, v, uv, inner, shading, geometry.Identity())
		triangle.Epsilon = b.scene.IntersectionEpsilon
		triangles = append(triangles, triangle)
	}
	return triangles, nil
}

func attr(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}

func (b *sceneBuilder) buildMeshes() error {
	for i, xm := range b.doc.Objects.Meshes {
		mesh, err := b.parseMesh(xm, nil)
		if err != nil {
			return fmt.Errorf("mesh %d: %w", i+1, err)
		}
		b.scene.BaseMeshes = append(b.scene.BaseMeshes, mesh)
		b.scene.Objects = append(b.scene.Objects, mesh)
	}
	return nil
}

func (b *sceneBuilder) parseMesh(xm xmlMesh, emitter *core.Emission) (*geometry.Mesh, error) {
	surface, err := b.surface(xm.xmlPlaced)
	if err != nil {
		return nil, err
	}
	surface.Emitter = emitter

	shading := geometry.ShadingFlat
	if emitter == nil {
		if shading, err = parseShadingMode(xm.ShadingMode); err != nil {
			return nil, err
		}
	}

	triangles, err := b.triangles(xm.Faces, surface, shading)
	if err != nil {
		return nil, err
	}
	if len(triangles) == 0 {
		return nil, fmt.Errorf("mesh has no faces")
	}

	placement, err := b.placement(xm.xmlPlaced, core.IdentityTransform())
	if err != nil {
		return nil, err
	}
	return geometry.NewMesh(triangles, surface, placement), nil
}

func (b *sceneBuilder) buildMeshInstances() error {
	for i, xi := range b.doc.Objects.MeshInstances {
		instance, err := b.parseMeshInstance(xi)
		if err != nil {
			return fmt.Errorf("mesh instance %d: %w", i+1, err)
		}
		b.scene.Objects = append(b.scene.Objects, instance)
	}
	return nil
}

// parseMeshInstance places an instance on top of its base mesh transform
// unless resetTransform discards it
func (b *sceneBuilder) parseMeshInstance(xi xmlMeshInstance) (*geometry.MeshInstance, error) {
	baseID, err := parseInt(xi.BaseMeshID)
	if err != nil {
		return nil, fmt.Errorf("baseMeshId: %w", err)
	}
	k, err := index(baseID, len(b.scene.BaseMeshes), "base mesh")
	if err != nil {
		return nil, err
	}
	base := b.scene.BaseMeshes[k]

	reset, err := parseBool(xi.ResetTransform, false)
	if err != nil {
		return nil, fmt.Errorf("resetTransform: %w", err)
	}

	surface, err := b.surface(xi.xmlPlaced)
	if err != nil {
		return nil, err
	}
	if surface.Texture != nil || surface.NormalTexture != nil {
		logger.Warningf("mesh instance of mesh %d: instance textures are ignored, the base mesh textures apply", baseID)
	}

	start := base.Transform
	if reset {
		start = core.IdentityTransform()
	}
	placement, err := b.placement(xi.xmlPlaced, start)
	if err != nil {
		return nil, err
	}
	return geometry.NewMeshInstance(base, surface.MaterialID, placement), nil
}

func (b *sceneBuilder) buildLightMeshes() error {
	for i, xm := range b.doc.Objects.LightMeshes {
		radiance, err := parseVec3(xm.Radiance)
		if err != nil {
			return fmt.Errorf("light mesh %d: Radiance: %w", i+1, err)
		}
		mesh, err := b.parseMesh(xm, &core.Emission{Radiance: radiance})
		if err != nil {
			return fmt.Errorf("light mesh %d: %w", i+1, err)
		}
		b.scene.Objects = append(b.scene.Objects, mesh)

		light := lights.NewMeshLight(mesh, b.scene.ShadowRayEpsilon)
		if light.Area() == 0 {
			logger.Warningf("light mesh %d has no area, it is not sampled as a light", i+1)
			continue
		}
		b.scene.Lights = append(b.scene.Lights, light)
	}
	return nil
}

func (b *sceneBuilder) buildTriangles() error {
	vt := b.scene.Vertices
	for i, xt := range b.doc.Objects.Triangles {
		surface, err := b.surface(xt.xmlPlaced)
		if err != nil {
			return fmt.Errorf("triangle %d: %w", i+1, err)
		}
		ids, err := parseInts(xt.Indices)
		if err != nil || len(ids) != 3 {
			return fmt.Errorf("triangle %d: Indices: invalid %q", i+1, strings.TrimSpace(xt.Indices))
		}

		var v [3]int
		for c, id := range ids {
			if v[c], err = index(id, len(vt.Positions), "vertex"); err != nil {
				return fmt.Errorf("triangle %d: %w", i+1, err)
			}
		}

		placement, err := b.placement(xt.xmlPlaced, core.IdentityTransform())
		if err != nil {
			return fmt.Errorf("triangle %d: %w", i+1, err)
		}
		triangle := geometry.NewTriangle(vt, v, v, surface, geometry.ShadingFlat, placement)
		triangle.Epsilon = b.scene.IntersectionEpsilon
		b.scene.Objects = append(b.scene.Objects, triangle)
	}
	return nil
}

func (b *sceneBuilder) buildSpheres() error {
	for i, xs := range b.doc.Objects.Spheres {
		sphere, err := b.parseSphere(xs, nil)
		if err != nil {
			return fmt.Errorf("sphere %d: %w", i+1, err)
		}
		b.scene.Objects = append(b.scene.Objects, sphere)
	}

	for i, xs := range b.doc.Objects.LightSpheres {
		radiance, err := parseVec3(xs.Radiance)
		if err != nil {
			return fmt.Errorf("light sphere %d: Radiance: %w", i+1, err)
		}
		sphere, err := b.parseSphere(xs, &core.Emission{Radiance: radiance})
		if err != nil {
			return fmt.Errorf("light sphere %d: %w", i+1, err)
		}
		b.scene.Objects = append(b.scene.Objects, sphere)
		b.scene.Lights = append(b.scene.Lights, lights.NewSphereLight(sphere, b.scene.ShadowRayEpsilon))
	}
	return nil
}

func (b *sceneBuilder) parseSphere(xs xmlSphere, emitter *core.Emission) (*geometry.Sphere, error) {
	surface, err := b.surface(xs.xmlPlaced)
	if err != nil {
		return nil, err
	}
	surface.Emitter = emitter

	centerID, err := parseInt(xs.Center)
	if err != nil {
		return nil, fmt.Errorf("Center: %w", err)
	}
	center, err := index(centerID, len(b.scene.Vertices.Positions), "vertex")
	if err != nil {
		return nil, err
	}
	radius, err := parseFloat(xs.Radius)
	if err != nil {
		return nil, fmt.Errorf("Radius: %w", err)
	}

	placement, err := b.placement(xs.xmlPlaced, core.IdentityTransform())
	if err != nil {
		return nil, err
	}
	return geometry.NewSphere(b.scene.Vertices.Position(center), radius, surface, placement), nil
}
