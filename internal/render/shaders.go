package render

const vertexShader = `
attribute vec2 a_position;
attribute vec2 a_texcoord;
varying vec2 v_texcoord;

void main() {
	v_texcoord = a_texcoord;
	gl_Position = vec4(a_position, 0.0, 1.0);
}
`

// u_transition: 0 shows the current image, 1 blends by alpha, 2 reveals
// the current image left to right.
const fragmentShader = `
precision mediump float;

varying vec2 v_texcoord;
uniform sampler2D u_texture;
uniform sampler2D u_texture_prev;
uniform float u_progress;
uniform int u_transition;
uniform vec2 u_scale;
uniform vec2 u_scale_prev;
uniform int u_tile;

vec4 fitted(sampler2D tex, vec2 scale) {
	vec2 uv;
	if (u_tile == 1) {
		uv = fract(v_texcoord * scale);
	} else {
		uv = (v_texcoord - 0.5) * scale + 0.5;
		if (uv.x < 0.0 || uv.x > 1.0 || uv.y < 0.0 || uv.y > 1.0) {
			return vec4(0.0, 0.0, 0.0, 1.0);
		}
	}
	return texture2D(tex, uv);
}

void main() {
	vec4 cur = fitted(u_texture, u_scale);
	if (u_transition == 0 || u_progress >= 1.0) {
		gl_FragColor = cur;
		return;
	}
	vec4 prev = fitted(u_texture_prev, u_scale_prev);
	if (u_transition == 2) {
		gl_FragColor = v_texcoord.x < u_progress ? cur : prev;
	} else {
		gl_FragColor = mix(prev, cur, u_progress);
	}
}
`

// quad is two triangles covering clip space: x, y, u, v per vertex. The
// first texture row is the top of the image.
var quad = []float32{
	-1, -1, 0, 1,
	1, -1, 1, 1,
	-1, 1, 0, 0,
	-1, 1, 0, 0,
	1, -1, 1, 1,
	1, 1, 1, 0,
}

const (
	quadVertices = 6
	quadStride   = 4 * 4
)
