package renderer

// ── Shared vertex stages ──────────────────────────────────────────────────────

// meshVertSrc: world-space position, normal and UV for every lit mesh.
const meshVertSrc = `
#version 410 core
layout(location = 0) in vec3 inPosition;
layout(location = 1) in vec3 inNormal;
layout(location = 2) in vec2 inUV;

uniform mat4 model;
uniform mat4 view;
uniform mat4 proj;

out vec3 fragPos;
out vec3 fragNormal;
out vec2 fragUV;

void main() {
    vec4 world = model * vec4(inPosition, 1.0);
    fragPos    = world.xyz;
    fragNormal = mat3(transpose(inverse(model))) * inNormal;
    fragUV     = inUV;
    gl_Position = proj * view * world;
}
` + "\x00"

// screenVertSrc: pass-through for the NDC screen quad.
const screenVertSrc = `
#version 410 core
layout(location = 0) in vec3 inPosition;
layout(location = 2) in vec2 inUV;

out vec2 fragUV;

void main() {
    fragUV = inUV;
    gl_Position = vec4(inPosition.xy, 0.0, 1.0);
}
` + "\x00"

// skyVertSrc: forces depth to the far plane with the xyww trick. The view
// matrix arrives with its translation stripped.
const skyVertSrc = `
#version 410 core
layout(location = 0) in vec3 inPosition;

uniform mat4 view;
uniform mat4 proj;

out vec3 fragDir;

void main() {
    fragDir = inPosition;
    vec4 pos = proj * view * vec4(inPosition, 1.0);
    gl_Position = pos.xyww;
}
` + "\x00"

// captureVertSrc: renders the unit cube from the inside into one cubemap face.
const captureVertSrc = `
#version 410 core
layout(location = 0) in vec3 inPosition;

uniform mat4 view;
uniform mat4 proj;

out vec3 fragDir;

void main() {
    fragDir = inPosition;
    gl_Position = proj * view * vec4(inPosition, 1.0);
}
` + "\x00"

// ── Forward shading kinds ─────────────────────────────────────────────────────

const glowyFragSrc = `
#version 410 core
in vec3 fragPos;
in vec3 fragNormal;
in vec2 fragUV;
out vec4 outColor;

uniform float time;

void main() {
    vec3 n = normalize(fragNormal) * 0.5 + 0.5;
    vec3 pulse = 0.5 + 0.5 * vec3(sin(time), sin(time + 2.094), sin(time + 4.189));
    outColor = vec4(n * pulse * 2.0, 1.0);
}
` + "\x00"

const lightListGLSL = `
#define MAX_LIGHTS 16
struct Light {
    vec3 position;
    vec3 color;
};
uniform Light lights[MAX_LIGHTS];
uniform int   numberOfLights;
uniform vec3  viewPos;
`

const phongFragSrc = `
#version 410 core
in vec3 fragPos;
in vec3 fragNormal;
in vec2 fragUV;
out vec4 outColor;

struct Material {
    vec3  ambient;
    vec3  diffuse;
    vec3  specular;
    float shininess;
};
uniform Material material;
uniform sampler2D diffuseTexture; // unit 0
uniform bool      hasTexture;
` + lightListGLSL + `
void main() {
    vec3 base = hasTexture ? texture(diffuseTexture, fragUV).rgb : vec3(1.0);
    vec3 N = normalize(fragNormal);
    vec3 V = normalize(viewPos - fragPos);

    vec3 color = material.ambient * base;
    for (int i = 0; i < numberOfLights && i < MAX_LIGHTS; i++) {
        vec3 L = normalize(lights[i].position - fragPos);
        vec3 R = reflect(-L, N);
        float diff = max(dot(N, L), 0.0);
        float spec = pow(max(dot(V, R), 0.0), max(material.shininess, 1.0));
        color += lights[i].color * (diff * material.diffuse * base + spec * material.specular);
    }
    outColor = vec4(color, 1.0);
}
` + "\x00"

// pbrInputsGLSL: material scalars with optional texture-pack overrides.
// Normal maps are perturbed with a derivative TBN since meshes carry no
// tangents.
const pbrInputsGLSL = `
uniform vec3  albedo;
uniform float metalness;
uniform float roughness;
uniform float ao;
uniform bool  packEnabled;

uniform sampler2D albedoMap;    // unit 0
uniform sampler2D normalMap;    // unit 1
uniform sampler2D roughnessMap; // unit 2
uniform sampler2D metallicMap;  // unit 3
uniform sampler2D heightMap;    // unit 4
uniform sampler2D aoMap;        // unit 5
uniform bool hasAlbedoMap;
uniform bool hasNormalMap;
uniform bool hasRoughnessMap;
uniform bool hasMetallicMap;
uniform bool hasHeightMap;
uniform bool hasAOMap;

struct Surface {
    vec3  albedo;
    vec3  normal;
    float roughness;
    float metalness;
    float ao;
};

vec3 perturbNormal(vec3 N, vec3 pos, vec2 uv) {
    vec3 t = texture(normalMap, uv).rgb * 2.0 - 1.0;
    vec3 dp1 = dFdx(pos);
    vec3 dp2 = dFdy(pos);
    vec2 duv1 = dFdx(uv);
    vec2 duv2 = dFdy(uv);
    vec3 T = normalize(dp1 * duv2.t - dp2 * duv1.t);
    vec3 B = -normalize(cross(N, T));
    return normalize(mat3(T, B, N) * t);
}

Surface surface(vec3 pos, vec3 normal, vec2 uv) {
    Surface s;
    s.albedo    = albedo;
    s.normal    = normalize(normal);
    s.roughness = roughness;
    s.metalness = metalness;
    s.ao        = ao;
    if (packEnabled) {
        if (hasAlbedoMap)    s.albedo    = pow(texture(albedoMap, uv).rgb, vec3(2.2));
        if (hasNormalMap)    s.normal    = perturbNormal(s.normal, pos, uv);
        if (hasRoughnessMap) s.roughness = texture(roughnessMap, uv).r;
        if (hasMetallicMap)  s.metalness = texture(metallicMap, uv).r;
        if (hasAOMap)        s.ao        = texture(aoMap, uv).r;
        if (hasHeightMap)    s.ao       *= mix(0.8, 1.0, texture(heightMap, uv).r);
    }
    return s;
}
`

// brdfGLSL: Cook-Torrance with GGX, Smith and Schlick.
const brdfGLSL = `
const float PI = 3.14159265359;

float distributionGGX(vec3 N, vec3 H, float r) {
    float a2 = r * r * r * r;
    float NdH = max(dot(N, H), 0.0);
    float d = NdH * NdH * (a2 - 1.0) + 1.0;
    return a2 / (PI * d * d);
}

float geometrySchlick(float NdV, float r) {
    float k = (r + 1.0) * (r + 1.0) / 8.0;
    return NdV / (NdV * (1.0 - k) + k);
}

vec3 fresnelSchlick(float cosTheta, vec3 F0) {
    return F0 + (1.0 - F0) * pow(clamp(1.0 - cosTheta, 0.0, 1.0), 5.0);
}

vec3 radiance(vec3 N, vec3 V, vec3 L, vec3 lightColor, vec3 alb, float rough, float metal) {
    vec3 H = normalize(V + L);
    vec3 F0 = mix(vec3(0.04), alb, metal);
    float NdV = max(dot(N, V), 0.0);
    float NdL = max(dot(N, L), 0.0);
    float NDF = distributionGGX(N, H, rough);
    float G   = geometrySchlick(NdV, rough) * geometrySchlick(NdL, rough);
    vec3  F   = fresnelSchlick(max(dot(H, V), 0.0), F0);
    vec3 spec = NDF * G * F / (4.0 * NdV * NdL + 0.0001);
    vec3 kD = (vec3(1.0) - F) * (1.0 - metal);
    return (kD * alb / PI + spec) * lightColor * NdL;
}
`

const pbrFragSrc = `
#version 410 core
in vec3 fragPos;
in vec3 fragNormal;
in vec2 fragUV;
out vec4 outColor;
` + lightListGLSL + pbrInputsGLSL + brdfGLSL + `
uniform bool        iblOn;
uniform samplerCube envMap; // unit 6

void main() {
    Surface s = surface(fragPos, fragNormal, fragUV);
    vec3 V = normalize(viewPos - fragPos);

    vec3 Lo = vec3(0.0);
    for (int i = 0; i < numberOfLights && i < MAX_LIGHTS; i++) {
        vec3 d = lights[i].position - fragPos;
        float att = 1.0 / max(dot(d, d), 0.0001);
        Lo += radiance(s.normal, V, normalize(d), lights[i].color * att, s.albedo, s.roughness, s.metalness);
    }
    vec3 ambient = vec3(0.03) * s.albedo;
    if (iblOn) {
        vec3 R = reflect(-V, s.normal);
        vec3 env = textureLod(envMap, R, s.roughness * 4.0).rgb;
        vec3 irr = textureLod(envMap, s.normal, 6.0).rgb;
        vec3 F = fresnelSchlick(max(dot(s.normal, V), 0.0), mix(vec3(0.04), s.albedo, s.metalness));
        ambient = ((1.0 - F) * (1.0 - s.metalness) * irr * s.albedo + F * env);
    }
    outColor = vec4(ambient * s.ao + Lo, 1.0);
}
` + "\x00"

const lightFragSrc = `
#version 410 core
out vec4 outColor;
uniform vec3 lightColor;

void main() {
    outColor = vec4(lightColor, 1.0);
}
` + "\x00"

// modelFragSrc: loaded models: Phong with an optional diffuse map.
const modelFragSrc = `
#version 410 core
in vec3 fragPos;
in vec3 fragNormal;
in vec2 fragUV;
out vec4 outColor;

uniform sampler2D diffuseTexture; // unit 0
uniform bool      hasTexture;
` + lightListGLSL + `
void main() {
    vec3 base = hasTexture ? texture(diffuseTexture, fragUV).rgb : vec3(0.8);
    vec3 N = normalize(fragNormal);
    vec3 V = normalize(viewPos - fragPos);
    vec3 color = 0.1 * base;
    for (int i = 0; i < numberOfLights && i < MAX_LIGHTS; i++) {
        vec3 L = normalize(lights[i].position - fragPos);
        vec3 H = normalize(L + V);
        color += lights[i].color * (max(dot(N, L), 0.0) * base + 0.3 * pow(max(dot(N, H), 0.0), 32.0));
    }
    outColor = vec4(color, 1.0);
}
` + "\x00"

// ── Deferred ──────────────────────────────────────────────────────────────────

const gbufferFragSrc = `
#version 410 core
in vec3 fragPos;
in vec3 fragNormal;
in vec2 fragUV;

layout(location = 0) out vec4 gPosition;
layout(location = 1) out vec4 gNormal;
layout(location = 2) out vec4 gAlbedo;
layout(location = 3) out vec4 gRoughMetalAO;
` + pbrInputsGLSL + `
void main() {
    Surface s = surface(fragPos, fragNormal, fragUV);
    gPosition     = vec4(fragPos, 1.0);
    gNormal       = vec4(s.normal, 1.0);
    gAlbedo       = vec4(s.albedo, 1.0);
    gRoughMetalAO = vec4(s.roughness, s.metalness, s.ao, 1.0);
}
` + "\x00"

// lightingFragSrc: full-screen resolve of the G-buffer. Pixels the geometry
// pass never touched have w == 0 in gPosition and are left to the
// background pass.
const lightingFragSrc = `
#version 410 core
in vec2 fragUV;
out vec4 outColor;

uniform sampler2D gPosition;     // unit 0
uniform sampler2D gNormal;       // unit 1
uniform sampler2D gAlbedo;       // unit 2
uniform sampler2D gRoughMetalAO; // unit 3
uniform samplerCube shadowMap;   // unit 4
uniform samplerCube envMap;      // unit 6

uniform bool  shadowsOn;
uniform vec3  lightPos;
uniform float farPlane;
uniform bool  iblOn;
` + lightListGLSL + brdfGLSL + `
const vec3 sampleOffsets[20] = vec3[](
    vec3( 1,  1,  1), vec3( 1, -1,  1), vec3(-1, -1,  1), vec3(-1,  1,  1),
    vec3( 1,  1, -1), vec3( 1, -1, -1), vec3(-1, -1, -1), vec3(-1,  1, -1),
    vec3( 1,  1,  0), vec3( 1, -1,  0), vec3(-1, -1,  0), vec3(-1,  1,  0),
    vec3( 1,  0,  1), vec3(-1,  0,  1), vec3( 1,  0, -1), vec3(-1,  0, -1),
    vec3( 0,  1,  1), vec3( 0, -1,  1), vec3( 0, -1, -1), vec3( 0,  1, -1)
);

float shadowFactor(vec3 pos) {
    vec3 d = pos - lightPos;
    float current = length(d);
    float radius = (1.0 + length(viewPos - pos) / farPlane) / 25.0;
    float shadow = 0.0;
    for (int i = 0; i < 20; i++) {
        float closest = texture(shadowMap, d + sampleOffsets[i] * radius).r * farPlane;
        if (current - 0.15 > closest) shadow += 1.0;
    }
    return shadow / 20.0;
}

void main() {
    vec4 p = texture(gPosition, fragUV);
    if (p.w == 0.0) discard;
    vec3 pos = p.xyz;
    vec3 N   = normalize(texture(gNormal, fragUV).xyz);
    vec3 alb = texture(gAlbedo, fragUV).rgb;
    vec3 rma = texture(gRoughMetalAO, fragUV).rgb;
    vec3 V   = normalize(viewPos - pos);

    vec3 Lo = vec3(0.0);
    for (int i = 0; i < numberOfLights && i < MAX_LIGHTS; i++) {
        vec3 d = lights[i].position - pos;
        float att = 1.0 / max(dot(d, d), 0.0001);
        Lo += radiance(N, V, normalize(d), lights[i].color * att, alb, rma.r, rma.g);
    }
    if (shadowsOn) Lo *= 1.0 - shadowFactor(pos);

    vec3 ambient = vec3(0.03) * alb;
    if (iblOn) {
        vec3 irr = textureLod(envMap, N, 6.0).rgb;
        ambient = irr * alb * (1.0 - rma.g);
    }
    outColor = vec4(ambient * rma.b + Lo, 1.0);
}
` + "\x00"

// ── Selection outline ─────────────────────────────────────────────────────────

const outlineVertSrc = `
#version 410 core
layout(location = 0) in vec3 inPosition;
layout(location = 1) in vec3 inNormal;

uniform mat4  model;
uniform mat4  view;
uniform mat4  proj;
uniform float outlining;

void main() {
    gl_Position = proj * view * model * vec4(inPosition + inNormal * outlining, 1.0);
}
` + "\x00"

const outlineFragSrc = `
#version 410 core
out vec4 outColor;
uniform vec3 outlineColor;

void main() {
    outColor = vec4(outlineColor, 1.0);
}
` + "\x00"

// ── Point shadow ──────────────────────────────────────────────────────────────

const shadowVertSrc = `
#version 410 core
layout(location = 0) in vec3 inPosition;

uniform mat4 model;
uniform mat4 shadowMatrix;

out vec3 fragPos;

void main() {
    vec4 world = model * vec4(inPosition, 1.0);
    fragPos = world.xyz;
    gl_Position = shadowMatrix * world;
}
` + "\x00"

// shadowFragSrc: stores linear distance to the light, normalised by farPlane.
const shadowFragSrc = `
#version 410 core
in vec3 fragPos;

uniform vec3  lightPos;
uniform float farPlane;

void main() {
    gl_FragDepth = length(fragPos - lightPos) / farPlane;
}
` + "\x00"

// ── Background ────────────────────────────────────────────────────────────────

const skyboxFragSrc = `
#version 410 core
in vec3 fragDir;
out vec4 outColor;
uniform samplerCube skybox; // unit 0

void main() {
    outColor = vec4(texture(skybox, fragDir).rgb, 1.0);
}
` + "\x00"

// equirectFragSrc: samples an equirectangular HDR image by direction. Used
// both as the IBL background and to capture the environment cubemap.
const equirectFragSrc = `
#version 410 core
in vec3 fragDir;
out vec4 outColor;
uniform sampler2D equirectMap; // unit 0

const vec2 invAtan = vec2(0.1591, 0.3183);

void main() {
    vec3 d = normalize(fragDir);
    vec2 uv = vec2(atan(d.z, d.x), asin(d.y)) * invAtan + 0.5;
    outColor = vec4(texture(equirectMap, uv).rgb, 1.0);
}
` + "\x00"

// ── Screen passes ─────────────────────────────────────────────────────────────

// tonemapFragSrc: exposure tone map with gamma when HDR is on; clamp
// pass-through otherwise.
const tonemapFragSrc = `
#version 410 core
in  vec2 fragUV;
out vec4 outColor;

uniform sampler2D hdrBuffer; // unit 0
uniform bool      hdrOn;
uniform float     exposure;

void main() {
    vec3 hdr = texture(hdrBuffer, fragUV).rgb;
    if (hdrOn) {
        vec3 mapped = vec3(1.0) - exp(-hdr * exposure);
        outColor = vec4(pow(mapped, vec3(1.0 / 2.2)), 1.0);
    } else {
        outColor = vec4(clamp(hdr, 0.0, 1.0), 1.0);
    }
}
` + "\x00"

const postFragSrc = `
#version 410 core
in  vec2 fragUV;
out vec4 outColor;

uniform sampler2D screenTexture; // unit 0
uniform float t_saturation;
uniform float t_blur;
uniform float t_outline;
uniform bool  t_invert;

void main() {
    vec2 px = 1.0 / vec2(textureSize(screenTexture, 0));
    vec3 center = texture(screenTexture, fragUV).rgb;

    vec3 box = vec3(0.0);
    float gx = 0.0;
    float gy = 0.0;
    for (int y = -1; y <= 1; y++) {
        for (int x = -1; x <= 1; x++) {
            vec3 s = texture(screenTexture, fragUV + vec2(x, y) * px * 2.0).rgb;
            box += s;
            float l = dot(s, vec3(0.299, 0.587, 0.114));
            gx += float(x) * (y == 0 ? 2.0 : 1.0) * l;
            gy += float(y) * (x == 0 ? 2.0 : 1.0) * l;
        }
    }
    vec3 color = mix(center, box / 9.0, t_blur);

    float edge = clamp(length(vec2(gx, gy)), 0.0, 1.0);
    color = mix(color, color * (1.0 - edge), t_outline);

    float gray = dot(color, vec3(0.299, 0.587, 0.114));
    color = mix(vec3(gray), color, t_saturation);

    if (t_invert) color = vec3(1.0) - color;
    outColor = vec4(color, 1.0);
}
` + "\x00"
