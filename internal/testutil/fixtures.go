package testutil

import (
	"fmt"
	"path/filepath"
	"testing"
)

// ShotHCL is a two-layer shot whose scene lives at <root>/scene.hip.
func ShotHCL(root string) string {
	return fmt.Sprintf(`
shot "aa" "0010" {
  output_format  = "exr"
  scene_path     = %q
  notes          = "lighting pass"
  priority       = 4000
  cpus           = 2
  per_layer_jobs = true

  resolution {
    width  = 2048
    height = 858
  }

  layer "bg" {
    pass_type   = "beauty"
    frame_range = "101-105,110"
    left_eye    = true
    priority    = 3000
    cpus        = 8
  }

  layer "hero_shadow" {
    pass_type    = "shadow"
    frame_range  = "101-109x4"
    version_up   = true
    distribution = "frame"
  }
}
`, filepath.Join(root, "scene.hip"))
}

// DescriptionHCL describes the passes of ShotHCL.
const DescriptionHCL = `
pass "bg" {
  type = "beauty"

  settings "Sampling" {
    setting "vm_samplesx" { value = 3 }
  }

  settings "AOVs" {
    setting "directDiffuse" { value = true }
  }

  group "env" {
    source_type = "geom"
    members     = ["/obj/set"]
  }

  group "key" {
    source_type = "light"
    members     = ["/obj/key"]
  }
}

pass "hero_shadow" {
  type = "shadow"

  group "hero" {
    source_type = "geom"
    members     = ["/obj/hero"]
  }

  group "set" {
    source_type = "geom"
    members     = ["/obj/set", "/obj/missing"]
  }
}
`

// SceneHCL is the renderer snapshot the passes resolve against.
const SceneHCL = `
node "/obj/set" {
  type        = "geo"
  render_node = "/obj/set/OUT"
}

node "/obj/hero" {
  type        = "geo"
  render_node = "/obj/hero/OUT"

  asset "/obj/hero/hero_asset" {
    magic_aovs = ["spec"]
  }
}

node "/obj/key" {
  type = "hlight"
}

camera "/obj/shotcam" {
  stereo = true
}
`

// SiteTOML is a site file writing everything below root.
func SiteTOML(root string) string {
	return fmt.Sprintf(`
mail_domain = "studio.example"
user = "artist"

[farm]
prep_cluster = "/prep"
render_cluster = "/render"

[commands]
prep = ["hbatch", "${archive}", "passgrid resolve --manifest ${manifest} --paths ${sidecar}"]
render = ["mantra", "-f", "${ifd}"]

[contexts.shot]
archive = "%[1]s/backup/${sequence}_${shot}_${stamp}.hip"
submission = "%[1]s/dispatch/${sequence}/${shot}"
image = "%[1]s/render/${layer}/${version}/${layer}.$F4.exr"
ifd = "%[1]s/ifd/${layer}/${version}/${layer}.$F4.ifd"

[store]
kind = "filesystem"
root = "%[1]s/published"
`, root)
}

// ShotFixture writes the site, shot, description, scene and scene file of
// the example shot under a fresh temporary directory and returns it.
func ShotFixture(t *testing.T) string {
	t.Helper()

	root := t.TempDir()
	return WriteFiles(t, root, map[string]string{
		"site.toml":              SiteTOML(root),
		"shot.hcl":               ShotHCL(root),
		"description/passes.hcl": DescriptionHCL,
		"scene/scene.hcl":        SceneHCL,
		"scene.hip":              "scene data",
	})
}
