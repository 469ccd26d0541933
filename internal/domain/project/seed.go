package project

import "time"

// Seeds returns the built-in projects used when no registry has been saved.
func Seeds(now time.Time) map[string]*Project {
	date := func(s string) time.Time {
		t, _ := time.ParseInLocation(DateLayout, s, time.Local)
		return t
	}
	projects := []*Project{
		{
			ID:          "business_case_1",
			Name:        "Династия докторов - увеличение выручки",
			Description: "Проект по увеличению выручки через цифровизацию и оптимизацию коммерческих процессов. Целевой показатель: 35 млн руб в текущем году, 80-100 млн руб в перспективе.",
			Status:      StatusExecution,
			Owner:       "Екатерина Михненко",
			Department:  "Маркетинг и продажи",
			StartDate:   "2024-01-15",
			EndDate:     "2024-12-15",
			File:        "Бизнес_кейс_Михненко_Екатерина.xlsx",
			Sections: map[string]string{
				SectionDetails:    "Основная информация об инициативе, цели и описание",
				SectionFinance:    "Финансовые показатели и прогнозы по годам",
				SectionSupport:    "Расчеты конверсии и KPI",
				SectionSchedule:   "Временной план выполнения задач",
				SectionMonitoring: "Ежемесячное отслеживание результатов",
				SectionStatus:     "Текущий статус реализации и прогресс",
			},
			TargetRevenue: "35 млн руб (2024), 80-100 млн руб (проекция)",
			KeyMetrics:    "Конверсия 0.6→0.7, выручка +35М руб",
			CreatedAt:     date("2024-01-01"),
		},
		{
			ID:          "business_case_2",
			Name:        "Увеличение конверсии из КЭВа в оплату",
			Description: "Проведение расследования по текущей ситуации, усиление КЭВа, внедрение точек касания по оборудованию. Целевой показатель: конверсия с 12% до 20%.",
			Status:      StatusPlanning,
			Owner:       "РОП офис Москва",
			Department:  "Продажи и сервис",
			StartDate:   "2025-05-12",
			EndDate:     "2025-12-01",
			File:        "Бизнес_кейс_Зырянова.xlsx",
			Sections: map[string]string{
				SectionDetails:    "Описание инициативы и ответственные",
				SectionFinance:    "Финансовое влияние по годам: 120М руб (2025), 240М руб (2026), 480М руб (2027)",
				SectionSupport:    "Расчет увеличения конверсии с 12% до 20%",
				SectionSchedule:   "План выполнения: расследование, разработка скрипта, контроль",
				SectionMonitoring: "Ежемесячный мониторинг конверсии и выручки",
				SectionStatus:     "Текущий статус реализации и прогресс",
			},
			TargetRevenue: "120 млн руб (2025), 240 млн руб (2026), 480 млн руб (2027)",
			KeyMetrics:    "Конверсия КЭВ→оплата: 12%→20% (+8%)",
			CreatedAt:     date("2025-04-01"),
		},
		{
			ID:          "business_case_3",
			Name:        "Увеличение конверсии из лида в запись",
			Description: "Проведение расследования, введение скрипта, ролевые игры и обучение менеджеров для повышения конверсии консультаций. Целевая конверсия: с 30% до 40%.",
			Status:      StatusIdentified,
			Owner:       "Светлана (РОП)",
			Department:  "Региональные продажи",
			StartDate:   "2025-05-01",
			EndDate:     "2025-07-30",
			File:        "Бизнес_кейс. Руслан Амерханов.xlsx",
			Sections: map[string]string{
				SectionDetails:    "Расследование, скрипты, обучение менеджеров",
				SectionFinance:    "Выручка: 35 млн руб (2025), 80 млн руб (2026), 100 млн руб (2027)",
				SectionSupport:    "Повышение конверсии консультаций с 30% до 40%",
				SectionSchedule:   "Ввод скрипта, анализ причин отвала, контроль соблюдения",
				SectionMonitoring: "План роста конверсии: 25%→30%→35%→38%",
				SectionStatus:     "Текущий статус реализации и прогресс",
			},
			TargetRevenue: "35 млн руб (2025), 80 млн руб (2026), 100 млн руб (2027)",
			KeyMetrics:    "Конверсия лид→запись: 30%→40% (+10%)",
			CreatedAt:     date("2025-04-15"),
		},
	}

	out := make(map[string]*Project, len(projects))
	for _, p := range projects {
		p.UpdatedAt = now
		out[p.ID] = p
	}
	return out
}
