package masking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKubernetesSecretMasker_AppliesToRequiresKindSecret(t *testing.T) {
	m := &KubernetesSecretMasker{}
	assert.True(t, m.AppliesTo("kind: Secret\ndata:\n  a: b\n"))
	assert.False(t, m.AppliesTo("kind: ConfigMap\ndata:\n  a: b\n"))
	assert.False(t, m.AppliesTo("just some ordinary text mentioning Secret in prose"))
}

func TestKubernetesSecretMasker_MaskYAMLSecretDataValues(t *testing.T) {
	m := &KubernetesSecretMasker{}
	in := `apiVersion: v1
kind: Secret
metadata:
  name: db-creds
data:
  password: cGFzc3dvcmQ=
  username: YWRtaW4=
`
	out := m.Mask(in)
	require.Contains(t, out, MaskedSecretValue)
	assert.NotContains(t, out, "cGFzc3dvcmQ=")
	assert.NotContains(t, out, "YWRtaW4=")
	assert.Contains(t, out, "db-creds")
}

func TestKubernetesSecretMasker_MaskJSONSecretDataValues(t *testing.T) {
	m := &KubernetesSecretMasker{}
	in := `{"kind":"Secret","metadata":{"name":"db-creds"},"data":{"password":"cGFzc3dvcmQ="}}`
	out := m.Mask(in)
	assert.Contains(t, out, MaskedSecretValue)
	assert.NotContains(t, out, "cGFzc3dvcmQ=")
}

func TestKubernetesSecretMasker_ConfigMapUntouched(t *testing.T) {
	m := &KubernetesSecretMasker{}
	in := `kind: ConfigMap
data:
  greeting: hello
`
	assert.Equal(t, in, m.Mask(in))
}

func TestKubernetesSecretMasker_SecretListMasksEachItem(t *testing.T) {
	m := &KubernetesSecretMasker{}
	in := `kind: SecretList
items:
  - kind: Secret
    data:
      token: c2VjcmV0
`
	out := m.Mask(in)
	assert.Contains(t, out, MaskedSecretValue)
	assert.NotContains(t, out, "c2VjcmV0")
}

func TestKubernetesSecretMasker_MaskAnnotationEmbeddedSecretJSON(t *testing.T) {
	m := &KubernetesSecretMasker{}
	in := `kind: Secret
metadata:
  name: db-creds
  annotations:
    kubectl.kubernetes.io/last-applied-configuration: '{"kind":"Secret","data":{"password":"cGFzc3dvcmQ="}}'
data:
  password: cGFzc3dvcmQ=
`
	out := m.Mask(in)
	assert.NotContains(t, out, "cGFzc3dvcmQ=")
}

func TestKubernetesSecretMasker_InvalidYAMLReturnsOriginal(t *testing.T) {
	m := &KubernetesSecretMasker{}
	in := "kind: Secret\n  this: [is not: valid yaml"
	assert.Equal(t, in, m.Mask(in))
}
