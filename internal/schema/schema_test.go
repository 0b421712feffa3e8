package schema

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestNormativa_RoundTripKeepsExtraFields(t *testing.T) {
	in := `{"ventana_diagnostica":{"fin":"2025-09-26","inicio":"2025-09-17"},"zona":{"b":1,"a":2},"limite_examenes_por_dia":3,"autor":"DECE"}`

	var n Normativa
	if err := json.Unmarshal([]byte(in), &n); err != nil {
		t.Fatalf("解码失败: %v", err)
	}
	if n.LimiteExamenesPorDia != 3 {
		t.Errorf("期望 limite=3，实际=%d", n.LimiteExamenesPorDia)
	}
	if n.VentanaDiagnostica.Inicio != "2025-09-17" {
		t.Errorf("inicio 解析错误: %s", n.VentanaDiagnostica.Inicio)
	}
	if len(n.Extra) != 2 {
		t.Errorf("期望保留 2 个额外字段，实际=%d", len(n.Extra))
	}

	out, err := json.Marshal(n)
	if err != nil {
		t.Fatalf("编码失败: %v", err)
	}
	// 顶层排序，嵌套保持原顺序
	want := `{"autor":"DECE","limite_examenes_por_dia":3,"ventana_diagnostica":{"fin":"2025-09-26","inicio":"2025-09-17"},"zona":{"b":1,"a":2}}`
	if string(out) != want {
		t.Errorf("编码结果不符\n期望: %s\n实际: %s", want, out)
	}
}

func TestNormativa_ModifiedVentanaIsReencoded(t *testing.T) {
	var n Normativa
	_ = json.Unmarshal([]byte(`{"limite_examenes_por_dia":2,"ventana_diagnostica":{"fin":"2025-09-26","inicio":"2025-09-17"}}`), &n)
	n.VentanaDiagnostica.Fin = "2025-09-30"

	out, _ := json.Marshal(n)
	if !strings.Contains(string(out), `"ventana_diagnostica":{"inicio":"2025-09-17","fin":"2025-09-30"}`) {
		t.Errorf("修改后的窗口应按结构体顺序重新编码: %s", out)
	}
}

func TestNormativa_Validate(t *testing.T) {
	ok := Normativa{LimiteExamenesPorDia: 3, VentanaDiagnostica: VentanaDiagnostica{Inicio: "2025-09-17", Fin: "2025-09-26"}}
	if err := ok.Validate(); err != nil {
		t.Errorf("期望通过: %v", err)
	}

	bad := ok
	bad.LimiteExamenesPorDia = 0
	if err := bad.Validate(); err == nil {
		t.Error("limite=0 应校验失败")
	}

	bad = ok
	bad.VentanaDiagnostica.Inicio = "17/09/2025"
	if err := bad.Validate(); err == nil {
		t.Error("日期格式错误应校验失败")
	}

	bad = ok
	bad.VentanaDiagnostica = VentanaDiagnostica{Inicio: "2025-09-26", Fin: "2025-09-17"}
	if err := bad.Validate(); err == nil {
		t.Error("fin 早于 inicio 应校验失败")
	}
}

func TestVentana_ContainsInclusive(t *testing.T) {
	v := VentanaDiagnostica{Inicio: "2025-09-17", Fin: "2025-09-26"}
	day := func(s string) time.Time {
		d, _ := time.Parse("2006-01-02", s)
		return d
	}

	for _, s := range []string{"2025-09-17", "2025-09-22", "2025-09-26"} {
		if !v.Contains(day(s)) {
			t.Errorf("%s 应在窗口内", s)
		}
	}
	for _, s := range []string{"2025-09-16", "2025-09-27"} {
		if v.Contains(day(s)) {
			t.Errorf("%s 不应在窗口内", s)
		}
	}
}

func TestEncodeJSON_NoHTMLEscape(t *testing.T) {
	out, err := EncodeJSON(map[string]string{"materia": "CIENCIAS <&> SOCIALES"})
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != `{"materia":"CIENCIAS <&> SOCIALES"}` {
		t.Errorf("不应转义 HTML 字符: %s", out)
	}
}

func TestFormal_EmbeddedSchema(t *testing.T) {
	f, err := CompileEmbedded()
	if err != nil {
		t.Fatalf("编译内嵌 schema 失败: %v", err)
	}

	valid := `{
	  "meta": {"generated_at": "2025-09-22T10:00:00Z", "version": 1, "schema_version": "0.2",
	           "schedule_integrity_hash": "` + strings.Repeat("a", 64) + `",
	           "normativa_hash": "` + strings.Repeat("b", 64) + `"},
	  "normativa": {"limite_examenes_por_dia": 3, "ventana_diagnostica": {"inicio": "2025-09-17", "fin": "2025-09-26"}},
	  "schedule": {"version": 1, "generated_at": "2025-09-22T10:00:00Z", "cursos": {}}
	}`
	violations, err := f.Check([]byte(valid))
	if err != nil {
		t.Fatalf("Check 出错: %v", err)
	}
	if len(violations) != 0 {
		t.Errorf("期望通过，实际违规: %v", violations)
	}

	invalid := strings.Replace(valid, `"schema_version": "0.2"`, `"schema_version": "0.1"`, 1)
	violations, err = f.Check([]byte(invalid))
	if err != nil {
		t.Fatalf("Check 出错: %v", err)
	}
	if len(violations) == 0 {
		t.Error("schema_version=0.1 应违规")
	}
}

func TestNormalizeJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"压缩空白", `{ "a" : [1, 2] }`, `{"a":[1,2]}`},
		{"Unicode 转义还原", `{"m":"F\u00cdSICA"}`, `{"m":"FÍSICA"}`},
		{"HTML 字符不转义", `{"s":"a<b&c"}`, `{"s":"a<b&c"}`},
		{"数字按 JS 输出", `[1.0,1.50,1e3,-0,1e-7,1e21]`, `[1,1.5,1000,0,1e-7,1e+21]`},
		{"重复键取最后值", `{"a":1,"b":2,"a":3}`, `{"a":3,"b":2}`},
		{"下标形式的键排在最前", `{"b":1,"10":2,"2":3,"01":4}`, `{"2":3,"10":2,"b":1,"01":4}`},
		{"字面量", `[true,false,null]`, `[true,false,null]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeJSON([]byte(tt.in))
			if err != nil {
				t.Fatalf("规范化失败: %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("期望 %s，实际 %s", tt.want, got)
			}
		})
	}

	if _, err := NormalizeJSON([]byte(`{"a":1} {}`)); err == nil {
		t.Error("尾部多余内容应报错")
	}
}

func TestItem_KeepsUnknownFields(t *testing.T) {
	in := `{"dia":"LUNES","periodo":"I","materia":"M","docente":"MS","curso":"X","created_at":1}`

	var it Item
	if err := json.Unmarshal([]byte(in), &it); err != nil {
		t.Fatalf("解码失败: %v", err)
	}
	if it.Dia != "LUNES" || it.Fecha != "" {
		t.Errorf("已知字段解析错误: %+v", it)
	}

	out, err := EncodeJSON(it)
	if err != nil {
		t.Fatalf("编码失败: %v", err)
	}
	if string(out) != in {
		t.Errorf("未知字段应原样保留\n期望: %s\n实际: %s", in, out)
	}

	it.Materia = "OTRA"
	out, _ = EncodeJSON(it)
	want := `{"dia":"LUNES","periodo":"I","materia":"OTRA","docente":"MS","fecha":""}`
	if string(out) != want {
		t.Errorf("修改后应按固定字段输出\n期望: %s\n实际: %s", want, out)
	}
}
