package payroll_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"

	"github.com/pflegewerk/lohnmonitor/internal"
	"github.com/pflegewerk/lohnmonitor/internal/payroll"
)

func TestPayroll(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Payroll Suite")
}

func expectDec(actual decimal.Decimal, want string) {
	GinkgoHelper()
	expected, err := decimal.NewFromString(want)
	Expect(err).ToNot(HaveOccurred())
	Expect(actual.Equal(expected)).To(BeTrue(), "expected %s, got %s", want, actual.String())
}

var _ = Describe("ComputeGross", func() {
	Context("full-time employee with variable allowances", func() {
		It("should match the reference payslip figures", func() {
			allowances := payroll.AllowanceSet{Group: 50, Shift: 75}

			b, err := payroll.ComputeGross(40, 18.50, allowances, 40)

			Expect(err).ToNot(HaveOccurred())
			expectDec(b.MonthlyHours, "173.92")
			expectDec(b.BaseGross, "3217.52")
			expectDec(b.GroupAllowance, "50")
			expectDec(b.ShiftAllowance, "75")
			expectDec(b.TotalAllowances, "125")
			expectDec(b.TotalGross, "3342.52")
		})
	})

	Context("part-time employee", func() {
		It("should prorate variable allowances by the part-time fraction", func() {
			allowances := payroll.AllowanceSet{Group: 50}

			b, err := payroll.ComputeGross(20, 18.50, allowances, 40)

			Expect(err).ToNot(HaveOccurred())
			// Half the reference hours means half the full-time allowance.
			expectDec(b.GroupAllowance, "25")
			expectDec(b.MonthlyHours, "86.96")
		})
	})

	Context("flat bonuses", func() {
		It("should apply each flag independently", func() {
			b, err := payroll.ComputeGross(40, 18.50, payroll.AllowanceSet{Bonus100: true}, 40)
			Expect(err).ToNot(HaveOccurred())
			expectDec(b.Bonus100, "100")
			Expect(b.Bonus150.IsZero()).To(BeTrue())
			expectDec(b.TotalAllowances, "100")
		})

		It("should apply both additively when both flags are set", func() {
			// The form prevents this combination but stored data may
			// carry it; the engine does not assume exclusivity.
			b, err := payroll.ComputeGross(40, 18.50, payroll.AllowanceSet{Bonus100: true, Bonus150: true}, 40)
			Expect(err).ToNot(HaveOccurred())
			expectDec(b.TotalAllowances, "250")
		})

		It("should never prorate flat bonuses", func() {
			b, err := payroll.ComputeGross(20, 18.50, payroll.AllowanceSet{Bonus150: true}, 40)
			Expect(err).ToNot(HaveOccurred())
			expectDec(b.Bonus150, "150")
		})
	})

	Context("zero-valued allowances", func() {
		It("should skip proration for non-positive full-time values", func() {
			b, err := payroll.ComputeGross(30, 20, payroll.AllowanceSet{Group: 0, Shift: -5}, 40)
			Expect(err).ToNot(HaveOccurred())
			Expect(b.GroupAllowance.IsZero()).To(BeTrue())
			Expect(b.ShiftAllowance.IsZero()).To(BeTrue())
		})
	})

	Context("invalid reference hours", func() {
		It("should fail with a configuration error instead of dividing by zero", func() {
			_, err := payroll.ComputeGross(40, 18.50, payroll.AllowanceSet{Group: 50}, 0)

			Expect(err).To(HaveOccurred())
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeConfiguration))
		})

		It("should reject negative reference hours", func() {
			_, err := payroll.ComputeGross(40, 18.50, payroll.AllowanceSet{}, -40)
			Expect(err).To(HaveOccurred())
		})
	})
})

var _ = Describe("ParseAllowances", func() {
	It("should decode the stored blob", func() {
		set, err := payroll.ParseAllowances(`{"gruppe":50,"schicht":75,"tl100":true,"tl150":false}`)
		Expect(err).ToNot(HaveOccurred())
		Expect(set.Group).To(Equal(50.0))
		Expect(set.Shift).To(Equal(75.0))
		Expect(set.Bonus100).To(BeTrue())
		Expect(set.Bonus150).To(BeFalse())
	})

	It("should treat an empty blob as zero allowances", func() {
		set, err := payroll.ParseAllowances("")
		Expect(err).ToNot(HaveOccurred())
		Expect(set).To(Equal(payroll.AllowanceSet{}))
	})

	It("should degrade a malformed blob to zero allowances with a data error", func() {
		set, err := payroll.ParseAllowances(`{"gruppe":`)

		Expect(set).To(Equal(payroll.AllowanceSet{}))
		Expect(err).To(HaveOccurred())
		appErr, ok := internal.IsAppError(err)
		Expect(ok).To(BeTrue())
		Expect(appErr.Type).To(Equal(internal.ErrorTypeData))
	})
})
